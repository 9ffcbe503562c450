package ports

import (
	"context"

	"sefval/domain/core"
	"sefval/domain/report"
)

// ReportRepository persists completed validation reports. Persistence is an
// external concern; the engine only produces report values.
type ReportRepository interface {
	Save(ctx context.Context, r *report.ValidationReport) error
	GetByID(ctx context.Context, id core.ReportID) (*report.ValidationReport, error)
	ListRecent(ctx context.Context, limit int) ([]*report.ValidationReport, error)
}
