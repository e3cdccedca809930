package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

var ErrReportNotFound = errors.New("report not found")

const reportColumns = `
	r.id,
	r.reporter_id,
	r.reported_user_id,
	r.reason,
	r.reported_at,
	r.status,
	r.reviewed_by,
	r.reviewed_at`

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create inserts a pending report. created is false when the reporter already
// has a pending report against the same user; the existing id is returned then.
func (r *ReportRepo) Create(ctx context.Context, reporterID, reportedUserID int64, reason string) (int64, bool, error) {
	if r.pool == nil {
		return 0, false, fmt.Errorf("postgres pool is nil")
	}
	if reporterID <= 0 || reportedUserID <= 0 {
		return 0, false, fmt.Errorf("invalid report payload")
	}
	if strings.TrimSpace(reason) == "" {
		return 0, false, fmt.Errorf("report reason is required")
	}

	// A pending duplicate may be resolved between the insert and the lookup,
	// in which case the insert is retried once.
	for attempt := 0; attempt < 2; attempt++ {
		var id int64
		err := r.pool.QueryRow(ctx, `
INSERT INTO reports (
	reporter_id,
	reported_user_id,
	reason,
	reported_at,
	status
) VALUES ($1, $2, $3, NOW(), 'pending')
ON CONFLICT (reporter_id, reported_user_id) WHERE status = 'pending' DO NOTHING
RETURNING id
`, reporterID, reportedUserID, strings.TrimSpace(reason)).Scan(&id)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("create report: %w", err)
		}

		id, found, err := r.FindPending(ctx, reporterID, reportedUserID)
		if err != nil {
			return 0, false, err
		}
		if found {
			return id, false, nil
		}
	}

	return 0, false, fmt.Errorf("create report: pending duplicate keeps changing")
}

// FindPending returns the reporter's pending report against reportedUserID.
func (r *ReportRepo) FindPending(ctx context.Context, reporterID, reportedUserID int64) (int64, bool, error) {
	if r.pool == nil {
		return 0, false, fmt.Errorf("postgres pool is nil")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
SELECT id
FROM reports
WHERE reporter_id = $1 AND reported_user_id = $2 AND status = 'pending'
`, reporterID, reportedUserID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("lookup pending report: %w", err)
	}
	return id, true, nil
}

func (r *ReportRepo) NextPending(ctx context.Context) (model.Report, error) {
	if r.pool == nil {
		return model.Report{}, fmt.Errorf("postgres pool is nil")
	}

	report, err := scanReport(r.pool.QueryRow(ctx, `
SELECT`+reportColumns+`
FROM reports r
WHERE r.status = 'pending'
ORDER BY r.reported_at ASC, r.id ASC
LIMIT 1
`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Report{}, ErrReportNotFound
		}
		return model.Report{}, fmt.Errorf("next pending report: %w", err)
	}

	return report, nil
}

// Resolve moves a pending report to a terminal status and writes the audit
// record in the same transaction. Accepting a report bumps the reported
// user's counter. action.TargetUserID is filled from the report.
func (r *ReportRepo) Resolve(ctx context.Context, reportID int64, status enums.ReportStatus, action model.AdminAction) (model.Report, error) {
	if status != enums.ReportStatusAccepted && status != enums.ReportStatusDismissed {
		return model.Report{}, fmt.Errorf("invalid terminal report status %q", status)
	}

	var report model.Report
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		report, err = scanReport(tx.QueryRow(ctx, `
UPDATE reports r
SET status = $2, reviewed_by = $3, reviewed_at = NOW()
WHERE r.id = $1 AND r.status = 'pending'
RETURNING`+reportColumns,
			reportID, string(status), action.AdminID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReportNotFound
			}
			return fmt.Errorf("resolve report: %w", err)
		}

		if status == enums.ReportStatusAccepted {
			if _, err := tx.Exec(ctx, `
UPDATE profiles
SET reported_count = reported_count + 1, last_reported = NOW()
WHERE user_id = $1
`, report.ReportedUserID); err != nil {
				return fmt.Errorf("increment reported count: %w", err)
			}
		}

		action.TargetUserID = report.ReportedUserID
		return insertAdminAction(ctx, tx, action)
	})
	if err != nil {
		return model.Report{}, err
	}

	return report, nil
}

func scanReport(row pgx.Row) (model.Report, error) {
	var (
		report model.Report
		status string
	)
	if err := row.Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedUserID,
		&report.Reason,
		&report.ReportedAt,
		&status,
		&report.ReviewedBy,
		&report.ReviewedAt,
	); err != nil {
		return model.Report{}, err
	}

	report.Status = enums.ReportStatus(status)
	return report, nil
}
