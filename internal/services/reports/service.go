package reports

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
	ratesvc "github.com/Evzheva/chatbot-for-dating/internal/services/rate"
)

type ProfileReader interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
}

type ReportStore interface {
	FindPending(ctx context.Context, reporterID, reportedUserID int64) (int64, bool, error)
	Create(ctx context.Context, reporterID, reportedUserID int64, reason string) (int64, bool, error)
}

type RateLimiter interface {
	RetryAfter(ctx context.Context, action ratesvc.Action, userID int64) (int64, error)
	Record(ctx context.Context, action ratesvc.Action, userID int64) error
}

type Notifier interface {
	NewReport(reported model.Profile, reason string)
}

type Service struct {
	profiles ProfileReader
	reports  ReportStore
	limiter  RateLimiter
	notifier Notifier
	logger   *zap.Logger
}

func NewService(profiles ProfileReader, reports ReportStore, limiter RateLimiter, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		reports:  reports,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit files a complaint. A second complaint against the same user while
// the first one is still pending is not an error; it is reported back as
// already pending and nobody is notified again.
func (s *Service) Submit(ctx context.Context, reporterID, targetID int64, reason string) (model.ReportOutcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.ReportOutcome{}, fmt.Errorf("%w: reason is required", apperr.ErrValidation)
	}
	if reporterID <= 0 || targetID <= 0 {
		return model.ReportOutcome{}, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}
	if reporterID == targetID {
		return model.ReportOutcome{}, fmt.Errorf("%w: cannot report yourself", apperr.ErrValidation)
	}

	target, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.ReportOutcome{}, fmt.Errorf("%w: profile %d", apperr.ErrNotFound, targetID)
		}
		return model.ReportOutcome{}, err
	}

	pendingID, pending, err := s.reports.FindPending(ctx, reporterID, targetID)
	if err != nil {
		return model.ReportOutcome{}, err
	}
	if pending {
		return model.ReportOutcome{Status: enums.ReportOutcomeAlreadyPending, ReportID: pendingID}, nil
	}

	if s.limiter != nil {
		retryAfter, err := s.limiter.RetryAfter(ctx, ratesvc.ActionReport, reporterID)
		if err != nil {
			return model.ReportOutcome{}, fmt.Errorf("report rate limit: %w", err)
		}
		if retryAfter > 0 {
			return model.ReportOutcome{}, apperr.RetryAfterError{Seconds: retryAfter}
		}
	}

	reportID, created, err := s.reports.Create(ctx, reporterID, targetID, reason)
	if err != nil {
		return model.ReportOutcome{}, err
	}
	if !created {
		return model.ReportOutcome{Status: enums.ReportOutcomeAlreadyPending, ReportID: reportID}, nil
	}
	if s.limiter != nil {
		if err := s.limiter.Record(ctx, ratesvc.ActionReport, reporterID); err != nil {
			s.logger.Warn("record report attempt", zap.Int64("reporter_id", reporterID), zap.Error(err))
		}
	}

	s.logger.Info("report submitted",
		zap.Int64("report_id", reportID),
		zap.Int64("reporter_id", reporterID),
		zap.Int64("target_id", targetID),
	)
	if s.notifier != nil {
		s.notifier.NewReport(target, reason)
	}
	return model.ReportOutcome{Status: enums.ReportOutcomeSubmitted, ReportID: reportID}, nil
}
