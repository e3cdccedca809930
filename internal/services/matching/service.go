package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/rules"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
	ratesvc "github.com/Evzheva/chatbot-for-dating/internal/services/rate"
)

const listLimit = 50

type ProfileReader interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	RandomCandidate(ctx context.Context, userID int64, gender enums.Gender) (model.Profile, error)
}

type LikeStore interface {
	Submit(ctx context.Context, fromUserID, toUserID int64) (enums.LikeOutcome, error)
	Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error)
	ListReceived(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error)
	ListGiven(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error)
}

type MatchStore interface {
	Exists(ctx context.Context, userID, targetID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error)
}

type RateLimiter interface {
	RetryAfter(ctx context.Context, action ratesvc.Action, userID int64) (int64, error)
	Record(ctx context.Context, action ratesvc.Action, userID int64) error
}

type Notifier interface {
	LikeReceived(recipientID, likerID int64)
	MatchCreated(userID int64, partner model.Profile)
}

type Service struct {
	profiles ProfileReader
	likes    LikeStore
	matches  MatchStore
	limiter  RateLimiter
	notifier Notifier
	logger   *zap.Logger
}

func NewService(profiles ProfileReader, likes LikeStore, matches MatchStore, limiter RateLimiter, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		likes:    likes,
		matches:  matches,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
	}
}

// FindCandidate picks a random approved profile the requester has not liked
// yet and whose gender fits the requester's preference. ok is false when
// nobody is left.
func (s *Service) FindCandidate(ctx context.Context, userID int64) (model.Profile, bool, error) {
	requester, err := s.approvedRequester(ctx, userID)
	if err != nil {
		return model.Profile{}, false, err
	}

	candidate, err := s.profiles.RandomCandidate(ctx, userID, rules.GenderFilter(requester.SearchGender))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, false, nil
		}
		return model.Profile{}, false, err
	}
	return candidate, true, nil
}

// SubmitLike records a like and reports whether it completed a match. Both
// sides of a new match are told who the other one is; a plain like only
// reaches the recipient anonymously.
func (s *Service) SubmitLike(ctx context.Context, fromID, toID int64) (enums.LikeOutcome, error) {
	if fromID == toID {
		return "", fmt.Errorf("%w: cannot like yourself", apperr.ErrValidation)
	}

	requester, err := s.approvedRequester(ctx, fromID)
	if err != nil {
		return "", err
	}

	target, err := s.profiles.Get(ctx, toID)
	if err != nil {
		return "", notFound(err, toID)
	}
	if !target.IsApproved() {
		return "", fmt.Errorf("%w: profile %d is not available", apperr.ErrNotFound, toID)
	}

	// a repeated like is answered without touching the rate budget
	liked, err := s.likes.Exists(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if liked {
		return enums.LikeOutcomeAlreadyLiked, nil
	}

	if s.limiter != nil {
		retryAfter, err := s.limiter.RetryAfter(ctx, ratesvc.ActionLike, fromID)
		if err != nil {
			return "", fmt.Errorf("like rate limit: %w", err)
		}
		if retryAfter > 0 {
			return "", apperr.RetryAfterError{Seconds: retryAfter}
		}
	}

	outcome, err := s.likes.Submit(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if outcome != enums.LikeOutcomeAlreadyLiked && s.limiter != nil {
		if err := s.limiter.Record(ctx, ratesvc.ActionLike, fromID); err != nil {
			s.logger.Warn("record like attempt", zap.Int64("user_id", fromID), zap.Error(err))
		}
	}

	switch outcome {
	case enums.LikeOutcomeRecorded:
		s.notifyLike(toID, fromID)
	case enums.LikeOutcomeMatchCreated:
		s.logger.Info("match created", zap.Int64("user_id", fromID), zap.Int64("target_id", toID))
		s.notifyMatch(fromID, target)
		s.notifyMatch(toID, requester)
	}
	return outcome, nil
}

// ListLikesReceived lists who liked userID. Names are withheld until the like
// is returned.
func (s *Service) ListLikesReceived(ctx context.Context, userID int64) ([]model.ProfileSummary, error) {
	items, err := s.likes.ListReceived(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].FirstName = ""
		items[i].LastName = ""
		items[i].Username = ""
	}
	return items, nil
}

func (s *Service) ListLikesGiven(ctx context.Context, userID int64) ([]model.ProfileSummary, error) {
	return s.likes.ListGiven(ctx, userID, listLimit)
}

func (s *Service) ListMatches(ctx context.Context, userID int64) ([]model.ProfileSummary, error) {
	return s.matches.ListForUser(ctx, userID, listLimit)
}

// ViewLiker shows the anonymized profile of someone who liked userID.
func (s *Service) ViewLiker(ctx context.Context, userID, likerID int64) (model.Profile, error) {
	liked, err := s.likes.Exists(ctx, likerID, userID)
	if err != nil {
		return model.Profile{}, err
	}
	if !liked {
		return model.Profile{}, fmt.Errorf("%w: no like from %d", apperr.ErrNotFound, likerID)
	}

	profile, err := s.profiles.Get(ctx, likerID)
	if err != nil {
		return model.Profile{}, notFound(err, likerID)
	}
	if !profile.IsActive() {
		return model.Profile{}, fmt.Errorf("%w: profile %d is not available", apperr.ErrNotFound, likerID)
	}
	return profile.Anonymized(), nil
}

// ViewMatch shows the full profile of a match partner.
func (s *Service) ViewMatch(ctx context.Context, userID, partnerID int64) (model.Profile, error) {
	matched, err := s.matches.Exists(ctx, userID, partnerID)
	if err != nil {
		return model.Profile{}, err
	}
	if !matched {
		return model.Profile{}, fmt.Errorf("%w: no match with %d", apperr.ErrNotFound, partnerID)
	}

	profile, err := s.profiles.Get(ctx, partnerID)
	if err != nil {
		return model.Profile{}, notFound(err, partnerID)
	}
	return profile, nil
}

func (s *Service) approvedRequester(ctx context.Context, userID int64) (model.Profile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, notFound(err, userID)
	}
	if !profile.IsApproved() {
		return model.Profile{}, fmt.Errorf("%w: user %d", apperr.ErrNotApproved, userID)
	}
	return profile, nil
}

func (s *Service) notifyLike(recipientID, likerID int64) {
	if s.notifier != nil {
		s.notifier.LikeReceived(recipientID, likerID)
	}
}

func (s *Service) notifyMatch(userID int64, partner model.Profile) {
	if s.notifier != nil {
		s.notifier.MatchCreated(userID, partner)
	}
}

func notFound(err error, userID int64) error {
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return fmt.Errorf("%w: profile %d", apperr.ErrNotFound, userID)
	}
	return err
}
