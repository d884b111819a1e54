package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

// ReportRunRepository stores one audit row per processed file. Report text and
// summaries are never persisted.
type ReportRunRepository struct {
	db *sql.DB
}

func NewReportRunRepository(db *sql.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

func (r *ReportRunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker replicas.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS report_runs (
	id TEXT PRIMARY KEY,
	request_id TEXT,
	filename TEXT NOT NULL,
	document_type TEXT NOT NULL,
	severity TEXT,
	outcome TEXT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	processed_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_runs_processed_at ON report_runs(processed_at DESC);
CREATE INDEX IF NOT EXISTS idx_report_runs_outcome ON report_runs(outcome);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveRun is idempotent on the event id, so redelivered events are ignored.
func (r *ReportRunRepository) SaveRun(ctx context.Context, event domain.ReportProcessed) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO report_runs (
	id, request_id, filename, document_type, severity, outcome, pages, duration_ms, processed_at, recorded_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO NOTHING
`,
		event.ID, nullable(event.RequestID), event.Filename, string(event.DocumentType), nullable(string(event.Severity)),
		string(event.Outcome), event.Pages, event.DurationMS, event.ProcessedAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert report run: %w", err)
	}
	return nil
}

// CountByOutcome summarizes runs processed since the given time.
func (r *ReportRunRepository) CountByOutcome(ctx context.Context, since time.Time) (map[domain.Outcome]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT outcome, COUNT(*)
FROM report_runs
WHERE processed_at >= $1
GROUP BY outcome
`, since)
	if err != nil {
		return nil, fmt.Errorf("query report runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan report run count: %w", err)
		}
		counts[domain.Outcome(outcome)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report runs: %w", err)
	}
	return counts, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
