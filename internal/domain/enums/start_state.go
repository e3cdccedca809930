package enums

type StartState string

const (
	StartStateAdmin         StartState = "admin"
	StartStateNotFound      StartState = "not_found"
	StartStatePendingReview StartState = "pending_review"
	StartStateApproved      StartState = "approved"
	StartStateBanned        StartState = "banned"
)
