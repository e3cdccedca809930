package enums

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusAccepted  ReportStatus = "accepted"
	ReportStatusDismissed ReportStatus = "dismissed"
)

type ReportDecision string

const (
	ReportDecisionAccept  ReportDecision = "accept"
	ReportDecisionDismiss ReportDecision = "dismiss"
)

type ReportOutcomeStatus string

const (
	ReportOutcomeSubmitted      ReportOutcomeStatus = "submitted"
	ReportOutcomeAlreadyPending ReportOutcomeStatus = "already_pending"
)
