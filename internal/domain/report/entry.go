package report

import (
	"strings"
	"time"
)

// Kind distinguishes the two child-record shapes a dispatch can carry.
type Kind string

const (
	KindTime    Kind = "time"
	KindExpense Kind = "expense"
)

// Status is the normalized approval state of an entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Entry is the canonical, kind-tagged record every downstream consumer
// operates on. Immutable once created: a load cycle only ever appends
// entries, never mutates them.
//
// Exactly one of MinutesBooked/AmountSpent is non-zero for a given Kind.
type Entry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name"`
	DispatchID        string    `json:"dispatch_id"`
	ServiceOrderLabel string    `json:"service_order_label,omitempty"`
	Date              time.Time `json:"date"`
	MinutesBooked     float64   `json:"minutes_booked"`
	AmountSpent       float64   `json:"amount_spent"`
	HourlyRate        float64   `json:"hourly_rate,omitempty"`
	Description       string    `json:"description,omitempty"`
	Kind              Kind      `json:"kind"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NormalizeStatus maps a raw status string onto one of the known Status
// values. Matching is case-insensitive; anything unrecognized (including the
// empty string) collapses to pending.
func NormalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusApproved:
		return StatusApproved
	case StatusRejected:
		return StatusRejected
	case StatusPending:
		return StatusPending
	default:
		return StatusPending
	}
}
