package enums

type AdminActionType string

const (
	AdminActionApprove       AdminActionType = "approve"
	AdminActionReject        AdminActionType = "reject"
	AdminActionBan           AdminActionType = "ban"
	AdminActionSkip          AdminActionType = "skip"
	AdminActionAcceptReport  AdminActionType = "accept_report"
	AdminActionDismissReport AdminActionType = "dismiss_report"
)

type ModerationDecision string

const (
	ModerationDecisionApprove ModerationDecision = "approve"
	ModerationDecisionReject  ModerationDecision = "reject"
	ModerationDecisionBan     ModerationDecision = "ban"
	ModerationDecisionSkip    ModerationDecision = "skip"
)

func (d ModerationDecision) Valid() bool {
	switch d {
	case ModerationDecisionApprove, ModerationDecisionReject, ModerationDecisionBan, ModerationDecisionSkip:
		return true
	default:
		return false
	}
}

// RequiresReason reports whether the decision must carry a free-text reason.
func (d ModerationDecision) RequiresReason() bool {
	return d == ModerationDecisionReject || d == ModerationDecisionBan
}

func (d ModerationDecision) Action() AdminActionType {
	switch d {
	case ModerationDecisionApprove:
		return AdminActionApprove
	case ModerationDecisionReject:
		return AdminActionReject
	case ModerationDecisionBan:
		return AdminActionBan
	default:
		return AdminActionSkip
	}
}
