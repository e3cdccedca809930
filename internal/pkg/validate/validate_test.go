package validate

import "testing"

func TestRequired(t *testing.T) {
	if Required("   ") {
		t.Fatalf("blank value must not pass")
	}
	if !Required(" Аня ") {
		t.Fatalf("non-empty value must pass")
	}
}

func TestUserID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{in: "12345", want: 12345, ok: true},
		{in: " 42 ", want: 42, ok: true},
		{in: "abc", ok: false},
		{in: "-5", ok: false},
		{in: "0", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range tests {
		got, ok := UserID(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("UserID(%q) = (%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
