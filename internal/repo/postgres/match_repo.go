package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/rules"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func createIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, targetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var matchID int64
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	status,
	matched_at
) VALUES ($1, $2, 'active', NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create match: %w", err)
	}

	return matchID > 0, nil
}

func (r *MatchRepo) Exists(ctx context.Context, userID, targetID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'active'
`, userA, userB).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match: %w", err)
	}

	return true, nil
}

// ListForUser returns the counterpart of every active match of userID.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.ProfileSummary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.user_id, p.first_name, p.last_name, p.username, p.class_name, m.matched_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'active'
ORDER BY m.matched_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.ProfileSummary, 0, 16)
	for rows.Next() {
		var item model.ProfileSummary
		if err := rows.Scan(&item.UserID, &item.FirstName, &item.LastName, &item.Username, &item.Class, &item.At); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return items, nil
}
