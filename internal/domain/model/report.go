package model

import (
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
)

type Report struct {
	ID             int64              `json:"id"`
	ReporterID     int64              `json:"reporter_id"`
	ReportedUserID int64              `json:"reported_user_id"`
	Reason         string             `json:"reason"`
	ReportedAt     time.Time          `json:"reported_at"`
	Status         enums.ReportStatus `json:"status"`
	ReviewedBy     *int64             `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time         `json:"reviewed_at,omitempty"`
}

// ReportView is a pending report with both sides resolved for the reviewer.
type ReportView struct {
	Report   Report   `json:"report"`
	Reporter *Profile `json:"reporter,omitempty"`
	Reported *Profile `json:"reported,omitempty"`
}

type ReportOutcome struct {
	Status   enums.ReportOutcomeStatus `json:"status"`
	ReportID int64                     `json:"report_id,omitempty"`
}
