package conversation

import (
	"context"
	"encoding/json"
	"fmt"
)

type StateRepository interface {
	Load(ctx context.Context, userID int64) ([]byte, bool, error)
	Store(ctx context.Context, userID int64, payload []byte) error
	Delete(ctx context.Context, userID int64) error
}

// RedisStore persists states as JSON so dialogues survive a bot restart.
type RedisStore struct {
	repo StateRepository
}

func NewRedisStore(repo StateRepository) *RedisStore {
	return &RedisStore{repo: repo}
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	payload, ok, err := s.repo.Load(ctx, userID)
	if err != nil || !ok {
		return State{}, false, err
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		// unreadable state: start over
		_ = s.repo.Delete(ctx, userID)
		return State{}, false, nil
	}
	return state, true, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}
	return s.repo.Store(ctx, userID, payload)
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	return s.repo.Delete(ctx, userID)
}
