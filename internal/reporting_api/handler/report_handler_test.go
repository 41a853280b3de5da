package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/fieldops-reporting/internal/loader"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) StartLoad(ctx context.Context, window dispatch.Window) (string, error) {
	args := m.Called(ctx, window)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) Progress() loader.Progress {
	args := m.Called()
	return args.Get(0).(loader.Progress)
}

func (m *MockReportService) FilteredEntries(filters report.Filters) []report.Entry {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]report.Entry)
}

func (m *MockReportService) Summarize(filters report.Filters) []report.SummaryRow {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]report.SummaryRow)
}

func (m *MockReportService) ExportSummary(filters report.Filters, format string) (string, error) {
	args := m.Called(filters, format)
	return args.String(0), args.Error(1)
}

func setupTestRouter(h *ReportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1/report")
	{
		group.POST("/loads", h.StartLoad)
		group.GET("/progress", h.GetProgress)
		group.GET("/entries", h.GetEntries)
		group.GET("/summary", h.GetSummary)
		group.POST("/summary/export", h.ExportSummary)
	}
	return router
}

func newTestHandler() (*ReportHandler, *MockReportService) {
	mockService := new(MockReportService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReportHandler(logger, mockService), mockService
}

func TestReportHandler_StartLoad(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		window := dispatch.Window{
			From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		}
		mockService.On("StartLoad", mock.Anything, window).Return("cycle-1", nil).Once()

		body := []byte(`{"date_from":"2024-03-01","date_to":"2024-03-07"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/loads", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "cycle-1", data["cycle_id"])
		assert.Equal(t, "loading", data["status"])
		mockService.AssertExpectations(t)
	})

	t.Run("MissingDates", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/loads", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "StartLoad")
	})

	t.Run("InvertedWindow", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		body := []byte(`{"date_from":"2024-03-07","date_to":"2024-03-01"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/loads", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "date_to must not precede date_from")
		mockService.AssertNotCalled(t, "StartLoad")
	})

	t.Run("DirectoryNotReady", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		mockService.On("StartLoad", mock.Anything, mock.Anything).Return("", loader.ErrDirectoryNotReady).Once()

		body := []byte(`{"date_from":"2024-03-01","date_to":"2024-03-07"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/loads", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestReportHandler_GetProgress(t *testing.T) {
	h, mockService := newTestHandler()
	router := setupTestRouter(h)

	mockService.On("Progress").Return(loader.Progress{
		Phase:   loader.PhaseFetching,
		Current: 5,
		Total:   7,
		CycleID: "cycle-1",
	}).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report/progress", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "fetching", data["phase"])
	assert.Equal(t, float64(5), data["current"])
	assert.Equal(t, float64(7), data["total"])
}

func TestReportHandler_GetEntries(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		entries := []report.Entry{
			{ID: "a", UserID: "7", Kind: report.KindTime},
			{ID: "b", UserID: "7", Kind: report.KindExpense},
		}
		mockService.On("FilteredEntries", mock.MatchedBy(func(f report.Filters) bool {
			return len(f.Users) == 1 && f.Users[0] == "7" &&
				len(f.Kinds) == 2 && f.Kinds[0] == report.KindTime
		})).Return(entries).Once()

		url := "/api/v1/report/entries?date_from=2024-03-01&date_to=2024-03-07&users=7&kinds=time&kinds=expense"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(2), data["count"])
		mockService.AssertExpectations(t)
	})

	t.Run("MissingWindow", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/report/entries", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "FilteredEntries")
	})

	t.Run("InvalidKind", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		url := "/api/v1/report/entries?date_from=2024-03-01&date_to=2024-03-07&kinds=mileage"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "FilteredEntries")
	})
}

func TestReportHandler_GetSummary(t *testing.T) {
	h, mockService := newTestHandler()
	router := setupTestRouter(h)

	rows := []report.SummaryRow{
		{UserID: "7", UserName: "Jane Doe", TotalMinutes: 90, TotalEarnings: 75, EntryCount: 2},
	}
	mockService.On("Summarize", mock.Anything).Return(rows).Once()

	url := "/api/v1/report/summary?date_from=2024-03-01&date_to=2024-03-07"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Doe")
}

func TestReportHandler_ExportSummary(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		mockService.On("ExportSummary", mock.Anything, "csv").Return("/tmp/exports/summary_20240307_120000.csv", nil).Once()

		body := []byte(`{"format":"csv","date_from":"2024-03-01","date_to":"2024-03-07"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/summary/export", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "summary_20240307_120000.csv")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		h, mockService := newTestHandler()
		router := setupTestRouter(h)

		body := []byte(`{"format":"pdf","date_from":"2024-03-01","date_to":"2024-03-07"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/report/summary/export", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ExportSummary")
	})
}
