package loader

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
)

// defaultHourlyRate is applied to time entries whose raw record carries no
// rate of its own.
const defaultHourlyRate = 50.0

// unknownUserPlaceholder is the name some upstream endpoints synthesize when
// they could not resolve a technician themselves.
const unknownUserPlaceholder = "Unknown User"

// Normalizer maps raw child records onto canonical report entries. It owns
// every alias-resolution and fallback rule; nothing downstream branches on
// raw fields.
type Normalizer struct {
	directory map[string]string // technician id -> display name
	now       func() time.Time
}

// NewNormalizer builds a normalizer over a directory snapshot.
func NewNormalizer(technicians []dispatch.Technician) *Normalizer {
	directory := make(map[string]string, len(technicians))
	for _, t := range technicians {
		if t.ID != "" && t.DisplayName != "" {
			directory[t.ID] = t.DisplayName
		}
	}
	return &Normalizer{directory: directory, now: time.Now}
}

// Normalize converts one raw record of the given kind into an Entry. index is
// the record's position within its collection and keeps generated fallback
// ids deterministic across reloads.
func (n *Normalizer) Normalize(raw dispatch.RawRecord, kind report.Kind, parent dispatch.Dispatch, index int) report.Entry {
	userID := n.resolveUserID(raw)
	entry := report.Entry{
		ID:                n.entryID(raw, kind, parent, index),
		UserID:            userID,
		UserName:          n.resolveUserName(raw, userID),
		DispatchID:        parent.ID,
		ServiceOrderLabel: parent.Label(),
		Date:              n.resolveDate(raw, kind),
		Description:       n.resolveDescription(raw, kind),
		Kind:              kind,
		Status:            resolveStatus(raw),
	}

	switch kind {
	case report.KindTime:
		if raw.DurationMinutes != nil {
			entry.MinutesBooked = *raw.DurationMinutes
		}
		entry.HourlyRate = defaultHourlyRate
		if raw.HourlyRate != nil {
			entry.HourlyRate = *raw.HourlyRate
		}
	case report.KindExpense:
		if raw.Amount != nil {
			entry.AmountSpent = *raw.Amount
		}
	}

	entry.CreatedAt = entry.Date
	if raw.CreatedAt != nil {
		entry.CreatedAt = *raw.CreatedAt
	}
	entry.UpdatedAt = entry.CreatedAt
	if raw.UpdatedAt != nil {
		entry.UpdatedAt = *raw.UpdatedAt
	}

	return entry
}

// entryID composes parent id, kind, and child id. A record without its own id
// gets its collection index instead, so reloading identical upstream data
// yields identical ids.
func (n *Normalizer) entryID(raw dispatch.RawRecord, kind report.Kind, parent dispatch.Dispatch, index int) string {
	if raw.ID != "" {
		return fmt.Sprintf("%s-%s-%s", parent.ID, kind, raw.ID)
	}
	return fmt.Sprintf("%s-%s-%d", parent.ID, kind, index)
}

// resolveUserID picks the first present alias: technicianId, userId, createdBy.
func (n *Normalizer) resolveUserID(raw dispatch.RawRecord) string {
	for _, candidate := range []string{raw.TechnicianID, raw.UserID, raw.CreatedBy} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return "unknown"
}

// resolveUserName cascades explicit name -> directory -> synthesized
// placeholder. An explicit name that is itself a placeholder is treated as
// absent, so a raw placeholder never shadows a real directory name.
func (n *Normalizer) resolveUserName(raw dispatch.RawRecord, userID string) string {
	explicit := strings.TrimSpace(raw.TechnicianName)
	if explicit != "" && !isPlaceholderName(explicit, userID) {
		return explicit
	}
	if name, ok := n.directory[userID]; ok {
		return name
	}
	return syntheticName(userID)
}

func (n *Normalizer) resolveDate(raw dispatch.RawRecord, kind report.Kind) time.Time {
	// Prefer the event's own time over the generic created-at; never leave
	// the date unset.
	if kind == report.KindTime && raw.StartTime != nil {
		return *raw.StartTime
	}
	if kind == report.KindExpense && raw.ExpenseDate != nil {
		return *raw.ExpenseDate
	}
	if raw.CreatedAt != nil {
		return *raw.CreatedAt
	}
	return n.now()
}

func (n *Normalizer) resolveDescription(raw dispatch.RawRecord, kind report.Kind) string {
	if raw.Description != "" {
		return raw.Description
	}
	if kind == report.KindTime {
		return raw.WorkType
	}
	return raw.ExpenseType
}

func resolveStatus(raw dispatch.RawRecord) report.Status {
	if raw.Status != "" {
		return report.NormalizeStatus(raw.Status)
	}
	if raw.IsApproved != nil && *raw.IsApproved {
		return report.StatusApproved
	}
	return report.StatusPending
}

func syntheticName(userID string) string {
	return "User " + userID
}

func isPlaceholderName(name, userID string) bool {
	return name == unknownUserPlaceholder || name == syntheticName(userID)
}
