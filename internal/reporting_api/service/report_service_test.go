package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/fieldops-reporting/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Reload(ctx context.Context, window dispatch.Window) (string, error) {
	args := m.Called(ctx, window)
	return args.String(0), args.Error(1)
}

func (m *MockLoader) Progress() loader.Progress {
	args := m.Called()
	return args.Get(0).(loader.Progress)
}

func (m *MockLoader) Entries() []report.Entry {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]report.Entry)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testEntries() []report.Entry {
	return []report.Entry{
		{ID: "a", UserID: "7", UserName: "Jane Doe", Date: day(10), Kind: report.KindTime, MinutesBooked: 60, HourlyRate: 50, Status: report.StatusApproved},
		{ID: "b", UserID: "7", UserName: "Jane Doe", Date: day(11), Kind: report.KindExpense, AmountSpent: 42, Status: report.StatusPending},
		{ID: "c", UserID: "8", UserName: "John Roe", Date: day(20), Kind: report.KindTime, MinutesBooked: 30, HourlyRate: 50, Status: report.StatusPending},
	}
}

func marchFilters() report.Filters {
	return report.Filters{DateFrom: day(1), DateTo: day(28)}
}

func TestReportService_StartLoad(t *testing.T) {
	ctx := context.Background()
	window := dispatch.Window{From: day(1), To: day(7)}

	t.Run("Success", func(t *testing.T) {
		mockLoader := new(MockLoader)
		service := NewReportService(testLogger(), mockLoader, t.TempDir())

		mockLoader.On("Reload", ctx, window).Return("cycle-1", nil).Once()

		cycleID, err := service.StartLoad(ctx, window)
		require.NoError(t, err)
		assert.Equal(t, "cycle-1", cycleID)
		mockLoader.AssertExpectations(t)
	})

	t.Run("LoaderError", func(t *testing.T) {
		mockLoader := new(MockLoader)
		service := NewReportService(testLogger(), mockLoader, t.TempDir())

		mockLoader.On("Reload", ctx, window).Return("", loader.ErrDirectoryNotReady).Once()

		_, err := service.StartLoad(ctx, window)
		require.ErrorIs(t, err, loader.ErrDirectoryNotReady)
	})
}

func TestReportService_FilteredEntries(t *testing.T) {
	mockLoader := new(MockLoader)
	service := NewReportService(testLogger(), mockLoader, t.TempDir())
	mockLoader.On("Entries").Return(testEntries())

	filters := marchFilters()
	filters.Users = []string{"7"}

	entries := service.FilteredEntries(filters)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestReportService_Summarize(t *testing.T) {
	mockLoader := new(MockLoader)
	service := NewReportService(testLogger(), mockLoader, t.TempDir())
	mockLoader.On("Entries").Return(testEntries())

	rows := service.Summarize(marchFilters())
	require.Len(t, rows, 2)
	assert.Equal(t, "7", rows[0].UserID, "higher earnings sort first")
	assert.Equal(t, 50.0, rows[0].TotalEarnings)
	assert.Equal(t, 2, rows[0].EntryCount)
}

func TestReportService_ExportSummary(t *testing.T) {
	mockLoader := new(MockLoader)
	outputDir := filepath.Join(t.TempDir(), "nested", "exports")
	service := NewReportService(testLogger(), mockLoader, outputDir)
	mockLoader.On("Entries").Return(testEntries())

	t.Run("WritesCSV", func(t *testing.T) {
		path, err := service.ExportSummary(marchFilters(), "csv")
		require.NoError(t, err)
		assert.Equal(t, ".csv", filepath.Ext(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := service.ExportSummary(marchFilters(), "pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported export format")
	})
}

func TestReportService_Progress(t *testing.T) {
	mockLoader := new(MockLoader)
	service := NewReportService(testLogger(), mockLoader, t.TempDir())

	want := loader.Progress{Phase: loader.PhaseFetching, Current: 5, Total: 7}
	mockLoader.On("Progress").Return(want).Once()

	assert.Equal(t, want, service.Progress())
}
