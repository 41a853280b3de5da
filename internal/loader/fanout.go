package loader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/panjf2000/ants/v2"
)

// BatchResult is one committed batch of normalized entries plus the running
// dispatch counts for progress reporting.
type BatchResult struct {
	Entries   []report.Entry
	Processed int
	Total     int
}

// DetailFetcher fans out per-dispatch detail fetches in fixed-size batches
// through a bounded worker pool. A dispatch whose fetch fails contributes
// empty collections; it never aborts siblings or later batches.
type DetailFetcher struct {
	details   dispatch.DetailSource
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

func NewDetailFetcher(details dispatch.DetailSource, pool *ants.Pool, batchSize int, logger *slog.Logger) *DetailFetcher {
	return &DetailFetcher{
		details:   details,
		pool:      pool,
		batchSize: batchSize,
		logger:    logger,
	}
}

// detailSet holds both child collections of one dispatch after its fetches
// settle.
type detailSet struct {
	timeEntries []dispatch.RawRecord
	expenses    []dispatch.RawRecord
}

// FetchBatches processes dispatches in consecutive batches. Within a batch
// all fetches run concurrently with no defined completion order; the
// assembled output preserves dispatch-list order, time entries before
// expenses within a dispatch. onBatch is invoked once per batch, after the
// batch has settled. Batch k+1 does not start until onBatch for k returned.
//
// stale is checked at the top of the batch loop; a superseded cycle lets its
// in-flight fetches finish, discards them, and returns ErrCycleSuperseded.
func (f *DetailFetcher) FetchBatches(ctx context.Context, dispatches []dispatch.Dispatch, normalizer *Normalizer, stale func() bool, onBatch func(BatchResult)) error {
	total := len(dispatches)
	processed := 0

	for start := 0; start < total; start += f.batchSize {
		if stale() {
			return ErrCycleSuperseded
		}

		end := start + f.batchSize
		if end > total {
			end = total
		}
		batch := dispatches[start:end]

		details := f.fetchBatch(ctx, batch)

		entries := make([]report.Entry, 0, len(batch)*4)
		for i, d := range batch {
			for idx, raw := range details[i].timeEntries {
				entries = append(entries, normalizer.Normalize(raw, report.KindTime, d, idx))
			}
			for idx, raw := range details[i].expenses {
				entries = append(entries, normalizer.Normalize(raw, report.KindExpense, d, idx))
			}
		}

		processed += len(batch)
		onBatch(BatchResult{
			Entries:   entries,
			Processed: processed,
			Total:     total,
		})
	}

	return nil
}

// fetchBatch runs both detail fetches for every dispatch in the batch on the
// worker pool and waits for all of them to settle.
func (f *DetailFetcher) fetchBatch(ctx context.Context, batch []dispatch.Dispatch) []detailSet {
	details := make([]detailSet, len(batch))

	var wg sync.WaitGroup
	for i, d := range batch {
		i, d := i, d

		wg.Add(1)
		f.submit(d.ID, &wg, func() {
			details[i].timeEntries = f.fetchTimeEntries(ctx, d.ID)
		})

		wg.Add(1)
		f.submit(d.ID, &wg, func() {
			details[i].expenses = f.fetchExpenses(ctx, d.ID)
		})
	}
	wg.Wait()

	return details
}

// submit hands a task to the pool; if the pool refuses it, the task's slot
// simply stays empty, same as a failed fetch.
func (f *DetailFetcher) submit(dispatchID string, wg *sync.WaitGroup, task func()) {
	err := f.pool.Submit(func() {
		defer wg.Done()
		task()
	})
	if err != nil {
		wg.Done()
		f.logger.Warn("failed to submit detail fetch to worker pool",
			"dispatch_id", dispatchID,
			"error", err,
		)
	}
}

func (f *DetailFetcher) fetchTimeEntries(ctx context.Context, dispatchID string) []dispatch.RawRecord {
	records, err := f.details.GetTimeEntries(ctx, dispatchID)
	if err != nil {
		f.logger.Warn("failed to fetch time entries, substituting empty collection",
			"dispatch_id", dispatchID,
			"error", err,
		)
		return nil
	}
	return records
}

func (f *DetailFetcher) fetchExpenses(ctx context.Context, dispatchID string) []dispatch.RawRecord {
	records, err := f.details.GetExpenses(ctx, dispatchID)
	if err != nil {
		f.logger.Warn("failed to fetch expenses, substituting empty collection",
			"dispatch_id", dispatchID,
			"error", err,
		)
		return nil
	}
	return records
}
