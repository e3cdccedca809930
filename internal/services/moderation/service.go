package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

type ProfileQueue interface {
	NextPending(ctx context.Context) (model.Profile, error)
	CountPending(ctx context.Context) (int, error)
	Approve(ctx context.Context, targetID int64, action model.AdminAction) error
	Reject(ctx context.Context, targetID int64, action model.AdminAction) (string, error)
	Ban(ctx context.Context, targetID int64, action model.AdminAction) error
	Skip(ctx context.Context, targetID int64, action model.AdminAction) error
	Stats(ctx context.Context) (model.ModerationStats, error)
}

type ReportQueue interface {
	NextPending(ctx context.Context) (model.Report, error)
	Resolve(ctx context.Context, reportID int64, status enums.ReportStatus, action model.AdminAction) (model.Report, error)
}

type ProfileReader interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
}

type PhotoStore interface {
	PhotoURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

type Notifier interface {
	ProfileApproved(userID int64)
	ProfileRejected(userID int64, reason string)
	ProfileBanned(userID int64, reason string)
}

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

type Dependencies struct {
	Profiles ProfileQueue
	Reports  ReportQueue
	Reader   ProfileReader
	Photos   PhotoStore
	Notifier Notifier
	Admins   AdminChecker
	Logger   *zap.Logger
}

type Service struct {
	profiles ProfileQueue
	reports  ReportQueue
	reader   ProfileReader
	photos   PhotoStore
	notifier Notifier
	admins   AdminChecker
	logger   *zap.Logger
}

// QueueItem is the head of the review queue as shown to a moderator.
type QueueItem struct {
	Profile   model.Profile
	PhotoURL  string
	QueueSize int
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		profiles: deps.Profiles,
		reports:  deps.Reports,
		reader:   deps.Reader,
		photos:   deps.Photos,
		notifier: deps.Notifier,
		admins:   deps.Admins,
		logger:   log,
	}
}

// NextProfile returns the oldest profile waiting for review. ok is false when
// the queue is empty.
func (s *Service) NextProfile(ctx context.Context, adminID int64) (QueueItem, bool, error) {
	if err := s.authorize(adminID); err != nil {
		return QueueItem{}, false, err
	}

	profile, err := s.profiles.NextPending(ctx)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return QueueItem{}, false, nil
		}
		return QueueItem{}, false, err
	}

	queueSize, err := s.profiles.CountPending(ctx)
	if err != nil {
		return QueueItem{}, false, err
	}

	return QueueItem{
		Profile:   profile,
		PhotoURL:  s.signKey(ctx, profile.PhotoObjectKey),
		QueueSize: queueSize,
	}, true, nil
}

// DecideProfile applies a moderator decision to a profile. Approve, reject
// and skip only work on profiles still waiting for review; ban works on any
// profile that is not banned yet.
func (s *Service) DecideProfile(ctx context.Context, adminID, targetID int64, decision enums.ModerationDecision, reason string) (model.DecisionResult, error) {
	if err := s.authorize(adminID); err != nil {
		return model.DecisionResult{}, err
	}
	if !decision.Valid() {
		return model.DecisionResult{}, fmt.Errorf("%w: unknown decision %q", apperr.ErrValidation, decision)
	}
	if targetID <= 0 {
		return model.DecisionResult{}, fmt.Errorf("%w: invalid target id", apperr.ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	if decision.RequiresReason() && reason == "" {
		return model.DecisionResult{}, fmt.Errorf("%w: %s requires a reason", apperr.ErrValidation, decision)
	}

	action := model.AdminAction{
		AdminID: adminID,
		Action:  decision.Action(),
		Details: decisionDetails(decision, reason),
	}

	var err error
	switch decision {
	case enums.ModerationDecisionApprove:
		err = s.profiles.Approve(ctx, targetID, action)
	case enums.ModerationDecisionReject:
		var photoKey string
		photoKey, err = s.profiles.Reject(ctx, targetID, action)
		if err == nil {
			s.removePhoto(ctx, targetID, photoKey)
		}
	case enums.ModerationDecisionBan:
		err = s.profiles.Ban(ctx, targetID, action)
	case enums.ModerationDecisionSkip:
		err = s.profiles.Skip(ctx, targetID, action)
	}
	if err != nil {
		return model.DecisionResult{}, translateProfileErr(err, targetID)
	}

	s.logger.Info("moderation decision applied",
		zap.Int64("admin_id", adminID),
		zap.Int64("target_id", targetID),
		zap.String("decision", string(decision)),
	)
	s.notifyDecision(targetID, decision, reason)

	return model.DecisionResult{Decision: decision, TargetID: targetID, Reason: reason}, nil
}

// NextReport returns the oldest pending report with both profiles attached.
// A profile that is gone by now is left nil.
func (s *Service) NextReport(ctx context.Context, adminID int64) (model.ReportView, bool, error) {
	if err := s.authorize(adminID); err != nil {
		return model.ReportView{}, false, err
	}

	report, err := s.reports.NextPending(ctx)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReportNotFound) {
			return model.ReportView{}, false, nil
		}
		return model.ReportView{}, false, err
	}

	view := model.ReportView{Report: report}
	if view.Reporter, err = s.snapshot(ctx, report.ReporterID); err != nil {
		return model.ReportView{}, false, err
	}
	if view.Reported, err = s.snapshot(ctx, report.ReportedUserID); err != nil {
		return model.ReportView{}, false, err
	}
	return view, true, nil
}

func (s *Service) DecideReport(ctx context.Context, adminID, reportID int64, decision enums.ReportDecision) (model.Report, error) {
	if err := s.authorize(adminID); err != nil {
		return model.Report{}, err
	}
	if reportID <= 0 {
		return model.Report{}, fmt.Errorf("%w: invalid report id", apperr.ErrValidation)
	}

	var (
		status enums.ReportStatus
		action = model.AdminAction{AdminID: adminID}
	)
	switch decision {
	case enums.ReportDecisionAccept:
		status = enums.ReportStatusAccepted
		action.Action = enums.AdminActionAcceptReport
		action.Details = fmt.Sprintf("Жалоба #%d принята", reportID)
	case enums.ReportDecisionDismiss:
		status = enums.ReportStatusDismissed
		action.Action = enums.AdminActionDismissReport
		action.Details = fmt.Sprintf("Жалоба #%d отклонена", reportID)
	default:
		return model.Report{}, fmt.Errorf("%w: unknown report decision %q", apperr.ErrValidation, decision)
	}

	report, err := s.reports.Resolve(ctx, reportID, status, action)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReportNotFound) {
			return model.Report{}, fmt.Errorf("%w: report %d is not pending", apperr.ErrNotFound, reportID)
		}
		return model.Report{}, err
	}

	s.logger.Info("report resolved",
		zap.Int64("admin_id", adminID),
		zap.Int64("report_id", reportID),
		zap.String("status", string(status)),
	)
	return report, nil
}

// Panel returns the counters shown on the admin panel.
func (s *Service) Panel(ctx context.Context, adminID int64) (model.ModerationStats, error) {
	if err := s.authorize(adminID); err != nil {
		return model.ModerationStats{}, err
	}
	return s.profiles.Stats(ctx)
}

func (s *Service) authorize(adminID int64) error {
	if s.admins == nil || !s.admins.IsAdmin(adminID) {
		return fmt.Errorf("%w: user %d is not an admin", apperr.ErrForbidden, adminID)
	}
	return nil
}

func (s *Service) snapshot(ctx context.Context, userID int64) (*model.Profile, error) {
	if s.reader == nil {
		return nil, nil
	}
	profile, err := s.reader.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Service) notifyDecision(targetID int64, decision enums.ModerationDecision, reason string) {
	if s.notifier == nil {
		return
	}
	switch decision {
	case enums.ModerationDecisionApprove:
		s.notifier.ProfileApproved(targetID)
	case enums.ModerationDecisionReject:
		s.notifier.ProfileRejected(targetID, reason)
	case enums.ModerationDecisionBan:
		s.notifier.ProfileBanned(targetID, reason)
	}
}

func (s *Service) removePhoto(ctx context.Context, targetID int64, key string) {
	if s.photos == nil || key == "" {
		return
	}
	if err := s.photos.Remove(ctx, key); err != nil {
		s.logger.Warn("remove rejected profile photo", zap.Int64("target_id", targetID), zap.Error(err))
	}
}

func (s *Service) signKey(ctx context.Context, key string) string {
	if s.photos == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	url, err := s.photos.PhotoURL(ctx, key)
	if err != nil {
		s.logger.Warn("sign photo url", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func decisionDetails(decision enums.ModerationDecision, reason string) string {
	switch decision {
	case enums.ModerationDecisionApprove:
		return "Анкета одобрена"
	case enums.ModerationDecisionSkip:
		return "Анкета пропущена"
	default:
		return "Причина: " + reason
	}
}

func translateProfileErr(err error, targetID int64) error {
	switch {
	case errors.Is(err, pgrepo.ErrProfileNotFound):
		return fmt.Errorf("%w: profile %d", apperr.ErrNotFound, targetID)
	case errors.Is(err, pgrepo.ErrProfileNotPending):
		return fmt.Errorf("%w: profile %d is no longer waiting for review", apperr.ErrNotFound, targetID)
	case errors.Is(err, pgrepo.ErrAlreadyBanned):
		return fmt.Errorf("%w: profile %d is already banned", apperr.ErrDuplicate, targetID)
	default:
		return err
	}
}
