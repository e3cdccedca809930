package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const conversationKeyPrefix = "conversation:"

// ConversationRepo keeps one serialized dialogue state per user. Every write
// refreshes the key TTL so abandoned dialogues expire on their own.
type ConversationRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewConversationRepo(client *goredis.Client, ttl time.Duration) *ConversationRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationRepo{client: client, ttl: ttl}
}

func (r *ConversationRepo) Load(ctx context.Context, userID int64) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, conversationKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get conversation state: %w", err)
	}
	return payload, true, nil
}

func (r *ConversationRepo) Store(ctx context.Context, userID int64, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(payload) == 0 {
		return fmt.Errorf("conversation payload is empty")
	}

	if err := r.client.Set(ctx, conversationKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	return nil
}

func (r *ConversationRepo) Delete(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete conversation state: %w", err)
	}
	return nil
}

func conversationKey(userID int64) string {
	return conversationKeyPrefix + strconv.FormatInt(userID, 10)
}
