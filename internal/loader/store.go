package loader

import (
	"sync"

	"github.com/fieldops-reporting/internal/domain/report"
)

// Store holds the accumulated entry set and progress of the current load
// cycle. Writes are generation-checked: only the cycle that owns the current
// generation may commit, which is what keeps superseded cycles from leaking
// stale entries into a newer cycle's set.
type Store struct {
	mu         sync.RWMutex
	generation int64
	entries    []report.Entry
	progress   Progress
}

func NewStore() *Store {
	return &Store{progress: Progress{Phase: PhaseIdle}}
}

// BeginCycle wholesale-replaces the accumulated set and installs gen as the
// owning generation. Replace, not merge: nothing from earlier cycles survives.
func (s *Store) BeginCycle(gen int64, progress Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation = gen
	s.entries = nil
	s.progress = progress
}

// Append commits a batch of entries on behalf of generation gen. Returns
// false without touching the set when gen has been superseded.
func (s *Store) Append(gen int64, entries []report.Entry, progress Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.entries = append(s.entries, entries...)
	s.progress = progress
	return true
}

// SetProgress updates progress on behalf of generation gen.
func (s *Store) SetProgress(gen int64, progress Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.progress = progress
	return true
}

// Snapshot returns a copy of the accumulated set.
func (s *Store) Snapshot() []report.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]report.Entry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// Progress returns the current cycle's progress value.
func (s *Store) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}
