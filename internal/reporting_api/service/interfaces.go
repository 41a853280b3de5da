package service

import (
	"context"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/fieldops-reporting/internal/loader"
)

// Loader abstracts the stream orchestrator for the HTTP layer.
type Loader interface {
	Reload(ctx context.Context, window dispatch.Window) (string, error)
	Progress() loader.Progress
	Entries() []report.Entry
}

// ReportService exposes the reporting operations the handlers call.
type ReportService interface {
	StartLoad(ctx context.Context, window dispatch.Window) (string, error)
	Progress() loader.Progress
	FilteredEntries(filters report.Filters) []report.Entry
	Summarize(filters report.Filters) []report.SummaryRow
	ExportSummary(filters report.Filters, format string) (string, error)
}
