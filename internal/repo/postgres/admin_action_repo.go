package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

type AdminActionRepo struct {
	pool *pgxpool.Pool
}

func NewAdminActionRepo(pool *pgxpool.Pool) *AdminActionRepo {
	return &AdminActionRepo{pool: pool}
}

func (r *AdminActionRepo) ListRecent(ctx context.Context, limit int) ([]model.AdminAction, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, admin_id, action, target_user_id, details, action_at
FROM admin_actions
ORDER BY action_at DESC, id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	items := make([]model.AdminAction, 0, limit)
	for rows.Next() {
		var (
			item   model.AdminAction
			action string
		)
		if err := rows.Scan(&item.ID, &item.AdminID, &action, &item.TargetUserID, &item.Details, &item.ActionAt); err != nil {
			return nil, fmt.Errorf("scan admin action: %w", err)
		}
		item.Action = enums.AdminActionType(action)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin actions: %w", err)
	}

	return items, nil
}

// insertAdminAction appends an audit record inside the caller's transaction.
func insertAdminAction(ctx context.Context, tx pgx.Tx, action model.AdminAction) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if action.AdminID <= 0 || action.Action == "" {
		return fmt.Errorf("invalid admin action payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO admin_actions (
	admin_id,
	action,
	target_user_id,
	details,
	action_at
) VALUES ($1, $2, $3, $4, NOW())
`, action.AdminID, string(action.Action), action.TargetUserID, action.Details); err != nil {
		return fmt.Errorf("insert admin action: %w", err)
	}

	return nil
}
