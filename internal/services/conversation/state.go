package conversation

import (
	"context"
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

// State is the dialogue a user is in the middle of. The zero value means no
// dialogue is active.
type State struct {
	Mode      enums.ConversationMode   `json:"mode"`
	Field     enums.ProfileField       `json:"field,omitempty"`
	Draft     model.ProfileDraft       `json:"draft"`
	Username  string                   `json:"username,omitempty"`
	TargetID  int64                    `json:"target_id,omitempty"`
	Decision  enums.ModerationDecision `json:"decision,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func (s State) Active() bool {
	return s.Mode != enums.ModeNone
}

// Store keeps one State per user.
type Store interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Save(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
}
