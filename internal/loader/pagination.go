package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fieldops-reporting/internal/domain/dispatch"
)

// ErrCycleSuperseded is returned by loader stages when a newer load cycle has
// taken over. It is a quiet abandon signal, never surfaced to consumers.
var ErrCycleSuperseded = errors.New("load cycle superseded")

// PageFetcher drives the dispatch source across pages until the window's full
// dispatch set is collected or a termination condition triggers.
type PageFetcher struct {
	source   dispatch.Source
	pageSize int
	maxPages int
	logger   *slog.Logger
}

func NewPageFetcher(source dispatch.Source, pageSize, maxPages int, logger *slog.Logger) *PageFetcher {
	return &PageFetcher{
		source:   source,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FetchAll concatenates dispatch pages in page order. It stops when the
// reported total is reached, when a page comes back short, or when the page
// cap is hit. The cap is a safety valve against a source that never runs dry;
// hitting it is logged but is not an error. A failed page request is fatal:
// no partial results are salvaged.
//
// stale is checked at the top of the page loop; a superseded cycle abandons
// the fetch with ErrCycleSuperseded after its in-flight request completes.
func (f *PageFetcher) FetchAll(ctx context.Context, window dispatch.Window, stale func() bool) ([]dispatch.Dispatch, error) {
	var all []dispatch.Dispatch

	for page := 1; page <= f.maxPages; page++ {
		if stale() {
			return nil, ErrCycleSuperseded
		}

		result, err := f.source.QueryDispatches(ctx, page, f.pageSize, window)
		if err != nil {
			return nil, fmt.Errorf("failed to query dispatch page %d: %w", page, err)
		}

		all = append(all, result.Items...)

		if result.TotalItems != nil && len(all) >= *result.TotalItems {
			break
		}
		if len(result.Items) < f.pageSize {
			// Short page means the source ran out of data.
			break
		}
		if page == f.maxPages {
			f.logger.Warn("dispatch page cap reached, truncating result set",
				"max_pages", f.maxPages,
				"collected", len(all),
			)
		}
	}

	return all, nil
}
