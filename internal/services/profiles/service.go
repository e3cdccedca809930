package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/pkg/validate"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	Save(ctx context.Context, p model.Profile) (model.Profile, error)
	UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value string) error
	TouchUsername(ctx context.Context, userID int64, username string) error
	SetPhoto(ctx context.Context, userID int64, fileID, objectKey string) (string, error)
	Delete(ctx context.Context, userID int64) (string, error)
}

type PhotoArchive interface {
	Archive(ctx context.Context, userID int64, photo model.Photo) (string, error)
	Remove(ctx context.Context, key string) error
}

type ReviewNotifier interface {
	NewProfileForReview(profile model.Profile)
}

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

type Service struct {
	store    ProfileStore
	photos   PhotoArchive
	notifier ReviewNotifier
	admins   AdminChecker
	logger   *zap.Logger
}

func NewService(store ProfileStore, photos PhotoArchive, notifier ReviewNotifier, admins AdminChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		photos:   photos,
		notifier: notifier,
		admins:   admins,
		logger:   logger,
	}
}

// Start resolves what /start shows. Admins always get the panel; everyone else
// is routed by the status of their profile.
func (s *Service) Start(ctx context.Context, userID int64, username string) (model.StartView, error) {
	if userID <= 0 {
		return model.StartView{}, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}

	profile, err := s.store.Get(ctx, userID)
	found := err == nil
	if err != nil && !errors.Is(err, pgrepo.ErrProfileNotFound) {
		return model.StartView{}, fmt.Errorf("get profile: %w", err)
	}

	if found && username != "" && profile.Username != username {
		if err := s.store.TouchUsername(ctx, userID, username); err != nil {
			s.logger.Warn("failed to refresh telegram username", zap.Int64("user_id", userID), zap.Error(err))
		} else {
			profile.Username = username
		}
	}

	if s.admins != nil && s.admins.IsAdmin(userID) {
		view := model.StartView{State: enums.StartStateAdmin}
		if found {
			view.Profile = &profile
		}
		return view, nil
	}
	if !found {
		return model.StartView{State: enums.StartStateNotFound}, nil
	}

	var state enums.StartState
	switch profile.Status {
	case enums.ProfileStatusApproved:
		state = enums.StartStateApproved
	case enums.ProfileStatusBanned:
		state = enums.StartStateBanned
	default:
		state = enums.StartStatePendingReview
	}
	return model.StartView{State: state, Profile: &profile}, nil
}

// Create stores a completed draft and puts the profile into the review queue.
// Resubmitting replaces the previous answers; banned users stay banned.
func (s *Service) Create(ctx context.Context, userID int64, username string, draft model.ProfileDraft) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}
	if err := validateDraft(draft); err != nil {
		return model.Profile{}, err
	}

	existing, err := s.store.Get(ctx, userID)
	switch {
	case err == nil && existing.Status == enums.ProfileStatusBanned:
		return model.Profile{}, fmt.Errorf("%w: user %d is banned", apperr.ErrForbidden, userID)
	case err != nil && !errors.Is(err, pgrepo.ErrProfileNotFound):
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	saved, err := s.store.Save(ctx, model.Profile{
		UserID:          userID,
		Username:        strings.TrimSpace(username),
		FirstName:       draft.FirstName,
		LastName:        draft.LastName,
		Class:           draft.Class,
		Interests:       draft.Interests,
		FavoriteSubject: draft.FavoriteSubject,
		Hobby:           draft.Hobby,
		Dream:           draft.Dream,
		AboutMe:         draft.AboutMe,
		Gender:          draft.Gender,
		SearchGender:    draft.SearchGender,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileBanned) {
			return model.Profile{}, fmt.Errorf("%w: user %d is banned", apperr.ErrForbidden, userID)
		}
		return model.Profile{}, err
	}

	s.logger.Info("profile submitted for review", zap.Int64("user_id", userID))
	if s.notifier != nil {
		s.notifier.NewProfileForReview(saved)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.Profile, error) {
	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, translate(err, userID)
	}
	return profile, nil
}

// UpdateField edits one field in place. The profile keeps its status.
func (s *Service) UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value string) error {
	value = strings.TrimSpace(value)
	if !field.Valid() {
		return fmt.Errorf("%w: unknown field %q", apperr.ErrValidation, field)
	}
	if !validate.Required(value) {
		return fmt.Errorf("%w: %s is required", apperr.ErrValidation, field)
	}
	switch field {
	case enums.FieldGender:
		if !enums.Gender(value).Valid() {
			return fmt.Errorf("%w: invalid gender %q", apperr.ErrValidation, value)
		}
	case enums.FieldSearchGender:
		if !enums.SearchGender(value).Valid() {
			return fmt.Errorf("%w: invalid search gender %q", apperr.ErrValidation, value)
		}
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return translate(err, userID)
	}
	if profile.Status == enums.ProfileStatusBanned {
		return fmt.Errorf("%w: user %d is banned", apperr.ErrForbidden, userID)
	}

	if err := s.store.UpdateField(ctx, userID, field, value); err != nil {
		return translate(err, userID)
	}
	return nil
}

// SetPhoto attaches a photo. When archiving is configured a copy is uploaded
// and the object of the previous photo is removed after the swap.
func (s *Service) SetPhoto(ctx context.Context, userID int64, photo model.Photo) (model.Profile, error) {
	if strings.TrimSpace(photo.FileID) == "" {
		return model.Profile{}, fmt.Errorf("%w: photo file id is required", apperr.ErrValidation)
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, translate(err, userID)
	}
	if profile.Status == enums.ProfileStatusBanned {
		return model.Profile{}, fmt.Errorf("%w: user %d is banned", apperr.ErrForbidden, userID)
	}

	var objectKey string
	if s.photos != nil && len(photo.Data) > 0 {
		objectKey, err = s.photos.Archive(ctx, userID, photo)
		if err != nil {
			// the Telegram file id alone is enough to show the photo
			s.logger.Warn("photo archive failed", zap.Int64("user_id", userID), zap.Error(err))
			objectKey = ""
		}
	}

	previous, err := s.store.SetPhoto(ctx, userID, photo.FileID, objectKey)
	if err != nil {
		s.removeObject(ctx, userID, objectKey)
		return model.Profile{}, translate(err, userID)
	}
	if previous != objectKey {
		s.removeObject(ctx, userID, previous)
	}

	profile.PhotoFileID = photo.FileID
	profile.PhotoObjectKey = objectKey
	return profile, nil
}

// Delete removes the profile together with its likes, matches and reports.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	photoKey, err := s.store.Delete(ctx, userID)
	if err != nil {
		return translate(err, userID)
	}
	s.removeObject(ctx, userID, photoKey)
	s.logger.Info("profile deleted", zap.Int64("user_id", userID))
	return nil
}

func (s *Service) removeObject(ctx context.Context, userID int64, key string) {
	if s.photos == nil || key == "" {
		return
	}
	if err := s.photos.Remove(ctx, key); err != nil {
		s.logger.Warn("photo object cleanup failed", zap.Int64("user_id", userID), zap.String("key", key), zap.Error(err))
	}
}

func validateDraft(draft model.ProfileDraft) error {
	for _, field := range enums.CreationSteps {
		if !validate.Required(draft.Get(field)) {
			return fmt.Errorf("%w: %s is required", apperr.ErrValidation, field)
		}
	}
	if !draft.Gender.Valid() {
		return fmt.Errorf("%w: invalid gender %q", apperr.ErrValidation, draft.Gender)
	}
	if !draft.SearchGender.Valid() {
		return fmt.Errorf("%w: invalid search gender %q", apperr.ErrValidation, draft.SearchGender)
	}
	return nil
}

func translate(err error, userID int64) error {
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return fmt.Errorf("%w: profile %d", apperr.ErrNotFound, userID)
	}
	return err
}
