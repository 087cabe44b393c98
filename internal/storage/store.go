package storage

import (
	"context"

	"ecalab/internal/model"
)

// Store persists analysis reports and their per-generation series.
type Store interface {
	Init(ctx context.Context) error
	SaveReport(ctx context.Context, report model.Report) error
	GetReport(ctx context.Context, id string) (model.Report, bool, error)
	// ListReports returns reports newest first; an empty kind matches every kind.
	ListReports(ctx context.Context, kind string) ([]model.Report, error)
	SaveSeries(ctx context.Context, series model.Series) error
	GetSeries(ctx context.Context, runID string) (model.Series, bool, error)
}
