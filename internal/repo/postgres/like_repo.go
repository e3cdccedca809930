package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Submit records fromUserID -> toUserID and creates the match when the
// reciprocal like already exists. Reciprocal likes on the same pair are
// serialized by an advisory lock, so exactly one of them observes the other.
func (r *LikeRepo) Submit(ctx context.Context, fromUserID, toUserID int64) (enums.LikeOutcome, error) {
	if fromUserID <= 0 || toUserID <= 0 || fromUserID == toUserID {
		return "", fmt.Errorf("invalid like payload")
	}

	outcome := enums.LikeOutcomeRecorded
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockPair(ctx, tx, fromUserID, toUserID); err != nil {
			return err
		}

		inserted, err := insertLike(ctx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if !inserted {
			outcome = enums.LikeOutcomeAlreadyLiked
			return nil
		}

		matched, err := createIfMutualLike(ctx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if matched {
			outcome = enums.LikeOutcomeMatchCreated
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return outcome, nil
}

func (r *LikeRepo) Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

// ListReceived returns the senders of likes addressed to userID, newest first.
func (r *LikeRepo) ListReceived(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error) {
	return r.list(ctx, `
SELECT p.user_id, p.first_name, p.last_name, p.username, p.class_name, l.liked_at
FROM likes l
JOIN profiles p ON p.user_id = l.from_user_id
WHERE l.to_user_id = $1 AND p.status <> 'banned'
ORDER BY l.liked_at DESC
LIMIT $2
`, userID, limit)
}

// ListGiven returns the profiles userID has liked, newest first.
func (r *LikeRepo) ListGiven(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error) {
	return r.list(ctx, `
SELECT p.user_id, p.first_name, p.last_name, p.username, p.class_name, l.liked_at
FROM likes l
JOIN profiles p ON p.user_id = l.to_user_id
WHERE l.from_user_id = $1
ORDER BY l.liked_at DESC
LIMIT $2
`, userID, limit)
}

func (r *LikeRepo) list(ctx context.Context, query string, userID int64, limit int) ([]model.ProfileSummary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	items := make([]model.ProfileSummary, 0, limit)
	for rows.Next() {
		var item model.ProfileSummary
		if err := rows.Scan(&item.UserID, &item.FirstName, &item.LastName, &item.Username, &item.Class, &item.At); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return items, nil
}

func insertLike(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
INSERT INTO likes (from_user_id, to_user_id, liked_at)
VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
`, fromUserID, toUserID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
