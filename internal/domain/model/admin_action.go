package model

import (
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
)

type AdminAction struct {
	ID           int64                 `json:"id"`
	AdminID      int64                 `json:"admin_id"`
	Action       enums.AdminActionType `json:"action"`
	TargetUserID int64                 `json:"target_user_id"`
	Details      string                `json:"details"`
	ActionAt     time.Time             `json:"action_at"`
}

type DecisionResult struct {
	Decision enums.ModerationDecision `json:"decision"`
	TargetID int64                    `json:"target_id"`
	Reason   string                   `json:"reason,omitempty"`
}
