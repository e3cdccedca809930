package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/pkg/callback"
)

const defaultTimeout = 10 * time.Second

type Button struct {
	Text string
	Data string
}

type Message struct {
	ChatID  int64
	Text    string
	Buttons []Button
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type AdminLister interface {
	IDs() []int64
}

// Dispatcher delivers best-effort notifications. Every message is sent on its
// own goroutine with a timeout; delivery failures are logged and dropped.
type Dispatcher struct {
	sender  Sender
	admins  AdminLister
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, admins AdminLister, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		admins:  admins,
		timeout: timeout,
		logger:  logger,
	}
}

// LikeReceived tells the recipient that someone liked them without naming the liker.
func (d *Dispatcher) LikeReceived(recipientID, likerID int64) {
	d.dispatch("like_received", Message{
		ChatID:  recipientID,
		Text:    likeReceivedText,
		Buttons: []Button{
			{Text: "👀 Посмотреть анкету", Data: callback.BuildID(callback.ViewLiker, likerID)},
			{Text: "💝 Мои лайки", Data: callback.Build(callback.MyLikes)},
		},
	})
}

// MatchCreated tells userID about the new match and reveals the partner.
func (d *Dispatcher) MatchCreated(userID int64, partner model.Profile) {
	d.dispatch("match_created", Message{
		ChatID:  userID,
		Text:    matchText(partner),
		Buttons: []Button{
			{Text: "👀 Посмотреть анкету", Data: callback.BuildID(callback.ViewMatch, partner.UserID)},
			{Text: "💝 Мои совпадения", Data: callback.Build(callback.MyMatches)},
		},
	})
}

func (d *Dispatcher) ProfileApproved(userID int64) {
	d.dispatch("profile_approved", Message{ChatID: userID, Text: approvedText})
}

func (d *Dispatcher) ProfileRejected(userID int64, reason string) {
	d.dispatch("profile_rejected", Message{ChatID: userID, Text: rejectedText(reason)})
}

func (d *Dispatcher) ProfileBanned(userID int64, reason string) {
	d.dispatch("profile_banned", Message{ChatID: userID, Text: bannedText(reason)})
}

func (d *Dispatcher) NewProfileForReview(profile model.Profile) {
	d.broadcastAdmins("profile_for_review", newProfileText(profile), callback.ModNext)
}

func (d *Dispatcher) NewReport(reported model.Profile, reason string) {
	d.broadcastAdmins("new_report", newReportText(reported, reason), callback.ReportsNext)
}

// Wait blocks until every notification started so far has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) broadcastAdmins(kind, text string, next callback.Action) {
	if d == nil || d.admins == nil {
		return
	}
	for _, adminID := range d.admins.IDs() {
		d.dispatch(kind, Message{
			ChatID:  adminID,
			Text:    text,
			Buttons: []Button{{Text: "🛡 Открыть очередь", Data: callback.Build(next)}},
		})
	}
}

func (d *Dispatcher) dispatch(kind string, msg Message) {
	if d == nil || d.sender == nil || msg.ChatID == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.logger.Error("notification panicked", zap.String("kind", kind), zap.Int64("chat_id", msg.ChatID), zap.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("notification failed",
				zap.String("kind", kind),
				zap.Int64("chat_id", msg.ChatID),
				zap.Error(err),
			)
		}
	}()
}
