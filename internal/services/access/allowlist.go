package access

import "sort"

// Allowlist is the fixed set of Telegram user ids with moderator rights.
// It is built once from configuration and is safe for concurrent reads.
type Allowlist struct {
	ids map[int64]struct{}
}

func NewAllowlist(ids []int64) *Allowlist {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id > 0 {
			set[id] = struct{}{}
		}
	}
	return &Allowlist{ids: set}
}

func (a *Allowlist) IsAdmin(userID int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[userID]
	return ok
}

// IDs returns the admins in ascending order.
func (a *Allowlist) IDs() []int64 {
	if a == nil {
		return nil
	}
	out := make([]int64, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
