package handler

import (
	"errors"
	"log/slog"

	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/fieldops-reporting/internal/loader"
	"github.com/fieldops-reporting/internal/reporting_api/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles HTTP requests for the reporting view
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// StartLoad triggers a fresh load cycle for a date window. A running cycle is
// superseded, never merged into.
func (h *ReportHandler) StartLoad(c *gin.Context) {
	var req StartLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid load request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	window, err := parseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	cycleID, err := h.reportService.StartLoad(c.Request.Context(), window)
	if err != nil {
		if errors.Is(err, loader.ErrDirectoryNotReady) {
			h.logger.Warn("Load refused, directory not ready", "error", err)
			RespondServiceUnavailable(c, "Technician directory is not available yet")
			return
		}
		h.logger.Error("Failed to start load cycle", "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, LoadStartedResponse{CycleID: cycleID, Status: "loading"})
}

// GetProgress returns the current load cycle's progress.
func (h *ReportHandler) GetProgress(c *gin.Context) {
	RespondOK(c, h.reportService.Progress())
}

// GetEntries returns the filtered snapshot of the accumulated entry set.
// Callable while a cycle is still streaming; the snapshot simply grows
// between calls.
func (h *ReportHandler) GetEntries(c *gin.Context) {
	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}

	entries := h.reportService.FilteredEntries(filters)
	RespondOK(c, EntryListResponse{Entries: entries, Count: len(entries)})
}

// GetSummary returns per-technician totals over the filtered set.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}

	RespondOK(c, h.reportService.Summarize(filters))
}

// ExportSummary writes the filtered summary to a file and returns its path.
func (h *ReportHandler) ExportSummary(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid export request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	window, err := parseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	path, err := h.reportService.ExportSummary(buildFilters(window, req.Users, req.Kinds, req.Statuses), req.Format)
	if err != nil {
		h.logger.Error("Failed to export summary", "format", req.Format, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, ExportResponse{Path: path})
}

func (h *ReportHandler) bindFilters(c *gin.Context) (report.Filters, bool) {
	var query FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid filter query", "error", err)
		RespondBadRequest(c, "Invalid filter parameters: "+err.Error())
		return report.Filters{}, false
	}

	window, err := parseWindow(query.DateFrom, query.DateTo)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return report.Filters{}, false
	}

	return buildFilters(window, query.Users, query.Kinds, query.Statuses), true
}
