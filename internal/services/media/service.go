package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

const signedURLTTL = 15 * time.Minute

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service archives profile photos. A Service without storage is a no-op,
// which is how the bot runs when S3 is disabled.
type Service struct {
	storage ObjectStorage
	now     func() time.Time
	newID   func() string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *Service) Enabled() bool {
	return s != nil && s.storage != nil
}

// Archive stores the photo bytes and returns the object key.
func (s *Service) Archive(ctx context.Context, userID int64, photo model.Photo) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if userID <= 0 || len(photo.Data) == 0 {
		return "", ErrValidation
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	key := s.objectKey(userID, photo.FileName)
	contentType := strings.TrimSpace(photo.ContentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := s.storage.Put(ctx, key, bytes.NewReader(photo.Data), int64(len(photo.Data)), contentType); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}

func (s *Service) PhotoURL(ctx context.Context, key string) (string, error) {
	if !s.Enabled() || key == "" {
		return "", nil
	}
	return s.storage.PresignGet(ctx, key, signedURLTTL)
}

func (s *Service) Remove(ctx context.Context, key string) error {
	if !s.Enabled() || key == "" {
		return nil
	}
	return s.storage.Delete(ctx, key)
}

func (s *Service) objectKey(userID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".jpg"
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("users/%d/photo/%s_%s%s", userID, stamp, s.newID(), ext)
}
