package access

import "testing"

func TestAllowlist(t *testing.T) {
	list := NewAllowlist([]int64{30, 10, 0, -5, 10})

	if !list.IsAdmin(10) || !list.IsAdmin(30) {
		t.Fatalf("configured ids must be admins")
	}
	if list.IsAdmin(0) || list.IsAdmin(-5) || list.IsAdmin(20) {
		t.Fatalf("unexpected admin")
	}

	ids := list.IDs()
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 30 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestNilAllowlistDeniesEveryone(t *testing.T) {
	var list *Allowlist
	if list.IsAdmin(1) {
		t.Fatalf("nil allowlist must deny")
	}
	if list.IDs() != nil {
		t.Fatalf("nil allowlist has no ids")
	}
}
