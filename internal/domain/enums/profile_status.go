package enums

// ProfileStatus is the moderation lifecycle of a profile.
type ProfileStatus string

const (
	ProfileStatusPendingReview ProfileStatus = "pending_review"
	ProfileStatusApproved      ProfileStatus = "approved"
	ProfileStatusRejected      ProfileStatus = "rejected"
	ProfileStatusBanned        ProfileStatus = "banned"
)

func (s ProfileStatus) Valid() bool {
	switch s {
	case ProfileStatusPendingReview, ProfileStatusApproved, ProfileStatusRejected, ProfileStatusBanned:
		return true
	default:
		return false
	}
}
