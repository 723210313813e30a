package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"floe/internal/types"
)

// reportsSchema is the DDL for the append-only reports table. City and
// condition are stored exactly as submitted (case-sensitive match keys);
// rows are never updated or deleted.
const reportsSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id         UUID PRIMARY KEY,
	city       TEXT NOT NULL,
	condition  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_city_condition_created
	ON reports (city, condition, created_at);`

// ReportRepo provides data access for the reports table. Append never fails
// silently: a store failure surfaces as an error rather than a zero count,
// which would be indistinguishable from "no votes yet".
type ReportRepo struct {
	db DBTX
}

// NewReportRepo creates a new ReportRepo backed by the given database
// connection (pool or transaction).
func NewReportRepo(db DBTX) *ReportRepo {
	return &ReportRepo{db: db}
}

// EnsureSchema creates the reports table and its covering index if missing.
// Called once at startup when a report store is configured.
func (r *ReportRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, reportsSchema); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to ensure reports schema", err)
	}
	return nil
}

// Append inserts one immutable report row with the given submission time.
func (r *ReportRepo) Append(ctx context.Context, city, condition string, submittedAt time.Time) (*types.Report, error) {
	report := &types.Report{
		ID:        uuid.NewString(),
		City:      city,
		Condition: condition,
		CreatedAt: submittedAt.UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO reports (id, city, condition, created_at) VALUES ($1, $2, $3, $4)`,
		report.ID, report.City, report.Condition, report.CreatedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to append report", err)
	}

	return report, nil
}

// CountMatching returns the number of stored reports whose city and condition
// match exactly (case-sensitive, as submitted). A zero since value counts all
// history; otherwise only reports at or after since are counted.
func (r *ReportRepo) CountMatching(ctx context.Context, city, condition string, since time.Time) (int, error) {
	var (
		count int
		err   error
	)

	if since.IsZero() {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM reports WHERE city = $1 AND condition = $2`,
			city, condition,
		).Scan(&count)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM reports WHERE city = $1 AND condition = $2 AND created_at >= $3`,
			city, condition, since.UTC(),
		).Scan(&count)
	}

	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count matching reports", err)
	}

	return count, nil
}
