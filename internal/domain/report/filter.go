package report

import "time"

// Filters selects a subset of an entry collection. An empty set on any axis
// means no restriction on that axis. DateFrom/DateTo are interpreted as whole
// days: [DateFrom 00:00:00.000, DateTo 23:59:59.999] inclusive.
type Filters struct {
	DateFrom time.Time
	DateTo   time.Time
	Users    []string
	Kinds    []Kind
	Statuses []Status
}

// FilterEntries returns the entries passing every non-empty filter axis.
// Pure: safe to call repeatedly against a growing set during streaming.
func FilterEntries(entries []Entry, f Filters) []Entry {
	from := startOfDay(f.DateFrom)
	to := endOfDay(f.DateTo)

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		if len(f.Users) > 0 && !containsString(f.Users, e.UserID) {
			continue
		}
		if len(f.Kinds) > 0 && !containsKind(f.Kinds, e.Kind) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, e.Status) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsKind(set []Kind, v Kind) bool {
	for _, k := range set {
		if k == v {
			return true
		}
	}
	return false
}

func containsStatus(set []Status, v Status) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
