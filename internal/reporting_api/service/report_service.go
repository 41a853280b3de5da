package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/fieldops-reporting/internal/export"
	"github.com/fieldops-reporting/internal/loader"
)

type ReportServiceImpl struct {
	loader    Loader
	outputDir string
	logger    *slog.Logger
}

func NewReportService(logger *slog.Logger, l Loader, outputDir string) *ReportServiceImpl {
	return &ReportServiceImpl{
		loader:    l,
		outputDir: outputDir,
		logger:    logger,
	}
}

// StartLoad begins a load cycle for the window and returns its cycle id.
func (s *ReportServiceImpl) StartLoad(ctx context.Context, window dispatch.Window) (string, error) {
	cycleID, err := s.loader.Reload(ctx, window)
	if err != nil {
		return "", fmt.Errorf("failed to start load cycle: %w", err)
	}
	return cycleID, nil
}

// Progress reports the current load cycle's progress.
func (s *ReportServiceImpl) Progress() loader.Progress {
	return s.loader.Progress()
}

// FilteredEntries applies filters to a snapshot of the accumulated set.
func (s *ReportServiceImpl) FilteredEntries(filters report.Filters) []report.Entry {
	return report.FilterEntries(s.loader.Entries(), filters)
}

// Summarize reduces the filtered set into per-technician totals.
func (s *ReportServiceImpl) Summarize(filters report.Filters) []report.SummaryRow {
	return report.Summarize(s.FilteredEntries(filters))
}

// ExportSummary writes the filtered summary to a timestamped file and returns
// its path.
func (s *ReportServiceImpl) ExportSummary(filters report.Filters, format string) (string, error) {
	writer, err := export.WriterForFormat(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", s.outputDir, err)
	}

	name := fmt.Sprintf("summary_%s.%s", time.Now().Format("20060102_150405"), export.Extension(format))
	path := filepath.Join(s.outputDir, name)

	rows := s.Summarize(filters)
	if err := writer.Write(path, rows); err != nil {
		return "", fmt.Errorf("failed to write summary export: %w", err)
	}

	s.logger.Info("summary exported", "path", path, "rows", len(rows), "format", format)
	return path, nil
}
