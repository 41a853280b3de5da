package handler

import (
	"errors"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
)

const dateLayout = "2006-01-02"

// StartLoadRequest triggers a load cycle for a date window
type StartLoadRequest struct {
	DateFrom string `json:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to" binding:"required,datetime=2006-01-02"`
}

// LoadStartedResponse acknowledges an accepted load cycle
type LoadStartedResponse struct {
	CycleID string `json:"cycle_id"`
	Status  string `json:"status"`
}

// FilterQuery carries the filter axes for entry and summary reads
type FilterQuery struct {
	DateFrom string   `form:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string   `form:"date_to" binding:"required,datetime=2006-01-02"`
	Users    []string `form:"users" binding:"omitempty"`
	Kinds    []string `form:"kinds" binding:"omitempty,dive,oneof=time expense"`
	Statuses []string `form:"statuses" binding:"omitempty,dive,oneof=pending approved rejected"`
}

// ExportRequest asks for a summary export file
type ExportRequest struct {
	Format   string   `json:"format" binding:"required,oneof=csv excel xlsx"`
	DateFrom string   `json:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string   `json:"date_to" binding:"required,datetime=2006-01-02"`
	Users    []string `json:"users" binding:"omitempty"`
	Kinds    []string `json:"kinds" binding:"omitempty,dive,oneof=time expense"`
	Statuses []string `json:"statuses" binding:"omitempty,dive,oneof=pending approved rejected"`
}

// ExportResponse reports where an export file was written
type ExportResponse struct {
	Path string `json:"path"`
}

// EntryListResponse wraps a filtered entry snapshot
type EntryListResponse struct {
	Entries []report.Entry `json:"entries"`
	Count   int            `json:"count"`
}

// parseWindow validates and converts a date pair into a Window.
func parseWindow(dateFrom, dateTo string) (dispatch.Window, error) {
	from, err := time.Parse(dateLayout, dateFrom)
	if err != nil {
		return dispatch.Window{}, errors.New("invalid date_from")
	}
	to, err := time.Parse(dateLayout, dateTo)
	if err != nil {
		return dispatch.Window{}, errors.New("invalid date_to")
	}
	if to.Before(from) {
		return dispatch.Window{}, errors.New("date_to must not precede date_from")
	}
	return dispatch.Window{From: from, To: to}, nil
}

// buildFilters converts validated filter strings into domain filters.
func buildFilters(window dispatch.Window, users, kinds, statuses []string) report.Filters {
	f := report.Filters{
		DateFrom: window.From,
		DateTo:   window.To,
		Users:    users,
	}
	for _, k := range kinds {
		f.Kinds = append(f.Kinds, report.Kind(k))
	}
	for _, s := range statuses {
		f.Statuses = append(f.Statuses, report.Status(s))
	}
	return f
}
