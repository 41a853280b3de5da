package dispatch

import "context"

// Source enumerates dispatches for a date window, one page at a time.
// Pages are 1-based.
type Source interface {
	QueryDispatches(ctx context.Context, page, pageSize int, window Window) (*Page, error)
}

// DetailSource fetches the two child collections of a single dispatch.
// Either call may fail; the loader treats a failed collection as empty.
type DetailSource interface {
	GetTimeEntries(ctx context.Context, dispatchID string) ([]RawRecord, error)
	GetExpenses(ctx context.Context, dispatchID string) ([]RawRecord, error)
}

// UserDirectory lists technicians for name resolution.
type UserDirectory interface {
	ListTechnicians(ctx context.Context) ([]Technician, error)
}
