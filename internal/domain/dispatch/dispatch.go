// Package dispatch holds the upstream-facing domain types: dispatches (the
// parent records enumerated by pagination), the raw child records attached to
// them, and the source interfaces the loader consumes. Raw records are
// deliberately loose: the upstream schema is not under our control and the
// same field shows up under several aliases depending on the endpoint.
package dispatch

import "time"

// Dispatch is one unit of field work. Fetched fresh each load cycle, never
// persisted by this system.
type Dispatch struct {
	ID             string `json:"id"`
	ServiceOrderID string `json:"serviceOrderId,omitempty"`
	DispatchNumber string `json:"dispatchNumber,omitempty"`
}

// Label derives the display label consumers show next to an entry.
func (d Dispatch) Label() string {
	if d.ServiceOrderID != "" {
		return "SO-" + d.ServiceOrderID
	}
	if d.DispatchNumber != "" {
		return d.DispatchNumber
	}
	return ""
}

// Page is one page of dispatches. TotalItems is nil when the source does not
// report a count; even when present it is a hint, not a guarantee.
type Page struct {
	Items      []Dispatch `json:"items"`
	TotalItems *int       `json:"totalItems,omitempty"`
}

// Window is the inclusive date range a load cycle covers.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// RawRecord is a child record as the upstream returns it, either time-kind or
// expense-kind. Every known alias is an optional field here; resolving them
// is the normalizer's job, nobody else branches on aliases.
type RawRecord struct {
	ID string `json:"id,omitempty"`

	// Technician identity aliases, in resolution priority order.
	TechnicianID string `json:"technicianId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	CreatedBy    string `json:"createdBy,omitempty"`

	// Explicit name, when the endpoint embeds one. May itself be a
	// placeholder the upstream synthesized.
	TechnicianName string `json:"technicianName,omitempty"`

	// Time-kind fields.
	DurationMinutes *float64   `json:"durationMinutes,omitempty"`
	HourlyRate      *float64   `json:"hourlyRate,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	WorkType        string     `json:"workType,omitempty"`

	// Expense-kind fields.
	Amount      *float64   `json:"amount,omitempty"`
	ExpenseDate *time.Time `json:"date,omitempty"`
	ExpenseType string     `json:"type,omitempty"`

	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	IsApproved  *bool      `json:"isApproved,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Technician is one row of the user directory listing.
type Technician struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
