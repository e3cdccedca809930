package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type Action string

const (
	ActionLike   Action = "likes"
	ActionReport Action = "reports"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type rule struct {
	limit  int
	window time.Duration
}

// Limiter caps how often a user may like and report. A nil Limiter or a rule
// with a zero limit allows everything.
type Limiter struct {
	store WindowStore
	rules map[Action]rule
}

func NewLimiter(store WindowStore, likesPerMinute, reportsPerHour int) *Limiter {
	return &Limiter{
		store: store,
		rules: map[Action]rule{
			ActionLike:   {limit: maxInt(likesPerMinute, 0), window: time.Minute},
			ActionReport: {limit: maxInt(reportsPerHour, 0), window: time.Hour},
		},
	}
}

// RetryAfter reports how many seconds the user has to wait before the action
// is allowed again. Zero means the action is allowed. It does not count an
// attempt; callers Record one once the action took effect.
func (l *Limiter) RetryAfter(ctx context.Context, action Action, userID int64) (int64, error) {
	r, ok, err := l.rule(action, userID)
	if err != nil || !ok {
		return 0, err
	}

	count, ttl, err := l.store.WindowState(ctx, windowKey(action, userID))
	if err != nil {
		return 0, err
	}
	if count >= int64(r.limit) {
		return maxInt64(ceilSeconds(ttl), 1), nil
	}

	return 0, nil
}

// Record counts one attempt in the current window.
func (l *Limiter) Record(ctx context.Context, action Action, userID int64) error {
	r, ok, err := l.rule(action, userID)
	if err != nil || !ok {
		return err
	}

	_, _, err = l.store.IncrementWindow(ctx, windowKey(action, userID), r.window)
	return err
}

// rule returns ok=false when the action is not limited.
func (l *Limiter) rule(action Action, userID int64) (rule, bool, error) {
	if l == nil {
		return rule{}, false, nil
	}
	if userID <= 0 {
		return rule{}, false, fmt.Errorf("invalid user id")
	}
	r, ok := l.rules[action]
	if !ok || r.limit == 0 {
		return rule{}, false, nil
	}
	if l.store == nil {
		return rule{}, false, fmt.Errorf("rate limiter store is nil")
	}
	return r, true, nil
}

func windowKey(action Action, userID int64) string {
	return "rate:" + string(action) + ":" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
