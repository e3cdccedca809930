package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

var (
	ErrProfileNotPending = errors.New("profile is not pending review")
	ErrAlreadyBanned     = errors.New("profile is already banned")
)

// ModerationRepo applies moderator decisions to profiles. Every decision and
// its audit record are committed together.
type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

// NextPending returns the head of the review queue. Skipped profiles are
// ordered by the time they were skipped instead of their registration time.
func (r *ModerationRepo) NextPending(ctx context.Context) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles p
WHERE p.status = 'pending_review'
ORDER BY COALESCE(p.skipped_at, p.registered_at) ASC, p.user_id ASC
LIMIT 1
`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("next pending profile: %w", err)
	}

	return profile, nil
}

func (r *ModerationRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE status = 'pending_review'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending profiles: %w", err)
	}
	return count, nil
}

func (r *ModerationRepo) Approve(ctx context.Context, targetID int64, action model.AdminAction) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
UPDATE profiles
SET status = 'approved', skipped_at = NULL, updated_at = NOW()
WHERE user_id = $1 AND status = 'pending_review'
`, targetID)
		if err != nil {
			return fmt.Errorf("approve profile: %w", err)
		}
		if result.RowsAffected() == 0 {
			return pendingMissError(ctx, tx, targetID)
		}

		action.TargetUserID = targetID
		return insertAdminAction(ctx, tx, action)
	})
}

// Reject deletes a pending profile and returns its archived photo key.
func (r *ModerationRepo) Reject(ctx context.Context, targetID int64, action model.AdminAction) (string, error) {
	var photoKey string
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
DELETE FROM profiles
WHERE user_id = $1 AND status = 'pending_review'
RETURNING photo_object_key
`, targetID).Scan(&photoKey)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pendingMissError(ctx, tx, targetID)
			}
			return fmt.Errorf("reject profile: %w", err)
		}

		action.TargetUserID = targetID
		return insertAdminAction(ctx, tx, action)
	})
	if err != nil {
		return "", err
	}

	return photoKey, nil
}

func (r *ModerationRepo) Ban(ctx context.Context, targetID int64, action model.AdminAction) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
UPDATE profiles
SET status = 'banned', skipped_at = NULL, updated_at = NOW()
WHERE user_id = $1 AND status <> 'banned'
`, targetID)
		if err != nil {
			return fmt.Errorf("ban profile: %w", err)
		}
		if result.RowsAffected() == 0 {
			exists, err := profileExists(ctx, tx, targetID)
			if err != nil {
				return err
			}
			if exists {
				return ErrAlreadyBanned
			}
			return ErrProfileNotFound
		}

		action.TargetUserID = targetID
		return insertAdminAction(ctx, tx, action)
	})
}

// Skip moves a pending profile to the back of the review queue.
func (r *ModerationRepo) Skip(ctx context.Context, targetID int64, action model.AdminAction) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
UPDATE profiles
SET skipped_at = NOW()
WHERE user_id = $1 AND status = 'pending_review'
`, targetID)
		if err != nil {
			return fmt.Errorf("skip profile: %w", err)
		}
		if result.RowsAffected() == 0 {
			return pendingMissError(ctx, tx, targetID)
		}

		action.TargetUserID = targetID
		return insertAdminAction(ctx, tx, action)
	})
}

func (r *ModerationRepo) Stats(ctx context.Context) (model.ModerationStats, error) {
	if r.pool == nil {
		return model.ModerationStats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats model.ModerationStats
	if err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM profiles WHERE status = 'pending_review'),
	(SELECT COUNT(*) FROM reports WHERE status = 'pending'),
	(SELECT COUNT(*) FROM profiles WHERE status = 'approved'),
	(SELECT COUNT(*) FROM profiles WHERE status = 'banned'),
	(SELECT COUNT(*) FROM profiles),
	(SELECT COUNT(*) FROM likes),
	(SELECT COUNT(*) FROM matches),
	(SELECT COUNT(*) FROM reports),
	(SELECT COUNT(*) FROM admin_actions)
`).Scan(
		&stats.PendingProfiles,
		&stats.PendingReports,
		&stats.Approved,
		&stats.Banned,
		&stats.TotalProfiles,
		&stats.TotalLikes,
		&stats.TotalMatches,
		&stats.TotalReports,
		&stats.TotalActions,
	); err != nil {
		return model.ModerationStats{}, fmt.Errorf("moderation stats: %w", err)
	}

	return stats, nil
}

func pendingMissError(ctx context.Context, tx pgx.Tx, userID int64) error {
	exists, err := profileExists(ctx, tx, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrProfileNotPending
	}
	return ErrProfileNotFound
}

func profileExists(ctx context.Context, tx pgx.Tx, userID int64) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup profile: %w", err)
	}
	return exists, nil
}
