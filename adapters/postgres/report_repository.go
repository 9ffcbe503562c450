// Package postgres persists validation reports in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/ports"
)

// ReportRepositoryImpl implements ReportRepository for PostgreSQL. Reports
// are stored whole as JSONB; the relational columns exist for listing and
// lookup, not for querying inside a report.
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// EnsureSchema creates the reports table when it does not exist yet.
func (r *ReportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_reports (
			id UUID PRIMARY KEY,
			run_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure validation_reports schema: %w", err)
	}
	return nil
}

// Save stores a completed validation report
func (r *ReportRepositoryImpl) Save(ctx context.Context, rep *report.ValidationReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", rep.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO validation_reports (id, run_id, created_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, string(rep.ID), string(rep.RunID), rep.CreatedAt.Time(), payload)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", rep.ID, err)
	}
	return nil
}

// GetByID retrieves a single report by its identifier
func (r *ReportRepositoryImpl) GetByID(ctx context.Context, id core.ReportID) (*report.ValidationReport, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload FROM validation_reports WHERE id = $1
	`, string(id))
	if err == sql.ErrNoRows {
		return nil, core.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	var rep report.ValidationReport
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &rep, nil
}

// ListRecent returns the most recently created reports, newest first
func (r *ReportRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*report.ValidationReport, error) {
	if limit <= 0 {
		limit = 20
	}

	var payloads [][]byte
	err := r.db.SelectContext(ctx, &payloads, `
		SELECT payload FROM validation_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	reports := make([]*report.ValidationReport, 0, len(payloads))
	for _, payload := range payloads {
		var rep report.ValidationReport
		if err := json.Unmarshal(payload, &rep); err != nil {
			return nil, fmt.Errorf("failed to decode stored report: %w", err)
		}
		reports = append(reports, &rep)
	}
	return reports, nil
}
