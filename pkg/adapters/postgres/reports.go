package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/epharma/triage/pkg/domain"
)

// ReportSink implements ports.ReportSink over the intake_reports table.
// Reports for a known user are upserted so the reviewing pharmacist always
// sees the latest intake; anonymous reports are appended.
type ReportSink struct {
	db *sql.DB
}

// NewReportSink wraps an existing database handle.
func NewReportSink(db *sql.DB) *ReportSink {
	return &ReportSink{db: db}
}

// SaveReport persists the report as a JSONB document.
func (s *ReportSink) SaveReport(ctx context.Context, report *domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if report.UserID != "" {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO intake_reports (session_id, user_id, report)
             VALUES ($1, $2, $3)
             ON CONFLICT (user_id) WHERE user_id IS NOT NULL
             DO UPDATE SET session_id = EXCLUDED.session_id, report = EXCLUDED.report`,
			report.SessionID, report.UserID, payload)
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO intake_reports (session_id, report) VALUES ($1, $2)`,
		report.SessionID, payload)
	return err
}
