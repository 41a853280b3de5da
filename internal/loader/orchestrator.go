package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/fieldops-reporting/internal/domain/report"
	"github.com/google/uuid"
)

// ErrDirectoryNotReady is returned by Reload while the technician directory
// has not been loaded; cycles are gated on it for name resolution.
var ErrDirectoryNotReady = errors.New("technician directory not loaded")

// EventPublisher publishes load-cycle lifecycle events. A nil publisher
// disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// CycleEvent is the payload published when a load cycle reaches a terminal
// state.
type CycleEvent struct {
	CycleID    string          `json:"cycle_id"`
	Window     dispatch.Window `json:"window"`
	Status     string          `json:"status"` // completed or failed
	EntryCount int             `json:"entry_count"`
	Message    string          `json:"message,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Orchestrator sequences pagination, batch fanout, and normalization into one
// incremental load cycle per date window. A new window supersedes the running
// cycle: the old cycle's in-flight calls are allowed to finish but nothing
// they produce is committed.
type Orchestrator struct {
	pages     *PageFetcher
	details   *DetailFetcher
	directory dispatch.UserDirectory
	events    EventPublisher
	logger    *slog.Logger

	generation atomic.Int64
	store      *Store

	dirMu      sync.Mutex
	normalizer *Normalizer

	subMu       sync.Mutex
	subscribers []chan []report.Entry
}

func NewOrchestrator(pages *PageFetcher, details *DetailFetcher, directory dispatch.UserDirectory, events EventPublisher, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		pages:     pages,
		details:   details,
		directory: directory,
		events:    events,
		logger:    logger,
		store:     NewStore(),
	}
}

// EnsureDirectory loads the technician directory if it has not been loaded
// yet. Safe to call repeatedly; a failed load leaves the orchestrator gated.
func (o *Orchestrator) EnsureDirectory(ctx context.Context) error {
	o.dirMu.Lock()
	defer o.dirMu.Unlock()

	if o.normalizer != nil {
		return nil
	}

	technicians, err := o.directory.ListTechnicians(ctx)
	if err != nil {
		return fmt.Errorf("failed to load technician directory: %w", err)
	}

	o.normalizer = NewNormalizer(technicians)
	o.logger.Info("technician directory loaded", "technicians", len(technicians))
	return nil
}

func (o *Orchestrator) currentNormalizer() (*Normalizer, bool) {
	o.dirMu.Lock()
	defer o.dirMu.Unlock()
	return o.normalizer, o.normalizer != nil
}

// Reload starts a fresh load cycle for the window, superseding any cycle
// still in flight, and returns the new cycle's id without waiting for it to
// finish. The accumulated set is cleared up front: consumers see the new
// cycle's entries only.
func (o *Orchestrator) Reload(ctx context.Context, window dispatch.Window) (string, error) {
	if err := o.EnsureDirectory(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectoryNotReady, err)
	}
	normalizer, ok := o.currentNormalizer()
	if !ok {
		return "", ErrDirectoryNotReady
	}

	gen := o.generation.Add(1)
	cycleID := uuid.New().String()

	o.store.BeginCycle(gen, Progress{Phase: PhasePaginating, CycleID: cycleID})
	o.logger.Info("load cycle started",
		"cycle_id", cycleID,
		"date_from", window.From.Format(time.DateOnly),
		"date_to", window.To.Format(time.DateOnly),
	)

	// The cycle outlives the triggering request; staleness is governed by the
	// generation counter, not by the caller's context.
	go o.runCycle(context.WithoutCancel(ctx), gen, cycleID, window, normalizer)

	return cycleID, nil
}

func (o *Orchestrator) runCycle(ctx context.Context, gen int64, cycleID string, window dispatch.Window, normalizer *Normalizer) {
	stale := func() bool { return o.generation.Load() != gen }

	dispatches, err := o.pages.FetchAll(ctx, window, stale)
	if errors.Is(err, ErrCycleSuperseded) {
		o.logger.Info("load cycle superseded during pagination", "cycle_id", cycleID)
		return
	}
	if err != nil {
		o.failCycle(ctx, gen, cycleID, window, err)
		return
	}

	total := len(dispatches)
	if total == 0 {
		o.finishCycle(ctx, gen, cycleID, window, Progress{Phase: PhaseDone, CycleID: cycleID})
		return
	}

	o.store.SetProgress(gen, Progress{Phase: PhaseFetching, Total: total, CycleID: cycleID})

	err = o.details.FetchBatches(ctx, dispatches, normalizer, stale, func(batch BatchResult) {
		committed := o.store.Append(gen, batch.Entries, Progress{
			Phase:   PhaseFetching,
			Current: batch.Processed,
			Total:   batch.Total,
			CycleID: cycleID,
		})
		if committed {
			o.publishBatch(batch.Entries)
		}
	})
	if errors.Is(err, ErrCycleSuperseded) {
		o.logger.Info("load cycle superseded during detail fetch", "cycle_id", cycleID)
		return
	}
	if err != nil {
		o.failCycle(ctx, gen, cycleID, window, err)
		return
	}

	o.finishCycle(ctx, gen, cycleID, window, Progress{
		Phase:   PhaseDone,
		Current: total,
		Total:   total,
		CycleID: cycleID,
	})
}

func (o *Orchestrator) finishCycle(ctx context.Context, gen int64, cycleID string, window dispatch.Window, progress Progress) {
	if !o.store.SetProgress(gen, progress) {
		return
	}
	entryCount := len(o.store.Snapshot())
	o.logger.Info("load cycle completed", "cycle_id", cycleID, "entries", entryCount, "dispatches", progress.Total)
	o.publishEvent(ctx, CycleEvent{
		CycleID:    cycleID,
		Window:     window,
		Status:     "completed",
		EntryCount: entryCount,
		FinishedAt: time.Now().UTC(),
	})
}

func (o *Orchestrator) failCycle(ctx context.Context, gen int64, cycleID string, window dispatch.Window, err error) {
	o.logger.Error("load cycle failed", "cycle_id", cycleID, "error", err)
	if !o.store.SetProgress(gen, Progress{Phase: PhaseError, Message: err.Error(), CycleID: cycleID}) {
		return
	}
	o.publishEvent(ctx, CycleEvent{
		CycleID:    cycleID,
		Window:     window,
		Status:     "failed",
		Message:    err.Error(),
		FinishedAt: time.Now().UTC(),
	})
}

func (o *Orchestrator) publishEvent(ctx context.Context, event CycleEvent) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, event.CycleID, event); err != nil {
		o.logger.Error("failed to publish load cycle event", "cycle_id", event.CycleID, "error", err)
	}
}

// Progress returns the current cycle's progress.
func (o *Orchestrator) Progress() Progress {
	return o.store.Progress()
}

// Entries returns a snapshot of the accumulated entry set. During a cycle the
// snapshot grows batch by batch.
func (o *Orchestrator) Entries() []report.Entry {
	return o.store.Snapshot()
}

// Subscribe registers a consumer for streamed entry batches. Each committed
// batch is delivered once per subscriber; slow subscribers miss batches
// rather than blocking the cycle. The returned func unsubscribes.
func (o *Orchestrator) Subscribe() (<-chan []report.Entry, func()) {
	ch := make(chan []report.Entry, 16)

	o.subMu.Lock()
	o.subscribers = append(o.subscribers, ch)
	o.subMu.Unlock()

	unsubscribe := func() {
		o.subMu.Lock()
		defer o.subMu.Unlock()
		for i, sub := range o.subscribers {
			if sub == ch {
				o.subscribers = append(o.subscribers[:i], o.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe
}

func (o *Orchestrator) publishBatch(entries []report.Entry) {
	if len(entries) == 0 {
		return
	}
	o.subMu.Lock()
	defer o.subMu.Unlock()
	for _, sub := range o.subscribers {
		select {
		case sub <- entries:
		default:
		}
	}
}
