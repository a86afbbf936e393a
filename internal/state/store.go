package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/dexterm/internal/pokeapi"
)

// Status is the list lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Query      Query
	Status     Status
	Generation uint64
	Items      []pokeapi.Pokemon
	Count      int
	LastError  error
	// ConsecutiveFailures counts list runs that failed in a row.
	ConsecutiveFailures int
	LastUpdated         time.Time

	Categories []pokeapi.Category

	Detail        *pokeapi.Pokemon
	DetailLoading bool
	DetailError   error
}

// IsOffline returns true when the API has failed for multiple runs.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Pages returns the page count for pageSize, at least 1.
func (s Snapshot) Pages(pageSize int) int {
	if pageSize <= 0 || s.Count <= pageSize {
		return 1
	}
	return (s.Count + pageSize - 1) / pageSize
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin starts a list run for q under generation gen. Prior results and the
// previous error are cleared. A gen older than the current one is ignored and
// Begin returns false.
func (s *Store) Begin(q Query, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.snapshot.Generation {
		return false
	}
	s.snapshot.Query = q
	s.snapshot.Generation = gen
	s.snapshot.Status = StatusLoading
	s.snapshot.Items = nil
	s.snapshot.Count = 0
	s.snapshot.LastError = nil
	return true
}

// Finish records the result of run gen. It returns false and changes nothing
// when a newer run has begun since.
func (s *Store) Finish(gen uint64, items []pokeapi.Pokemon, count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return false
	}
	s.snapshot.Status = StatusLoaded
	s.snapshot.Items = slices.Clone(items)
	s.snapshot.Count = count
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Fail records err for run gen, clearing results. Like Finish it ignores
// stale generations.
func (s *Store) Fail(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return false
	}
	s.snapshot.Status = StatusError
	s.snapshot.Items = nil
	s.snapshot.Count = 0
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
	return true
}

// MergeItem merges p into the loaded list entry with the same ID. It reports
// whether an entry matched.
func (s *Store) MergeItem(p pokeapi.Pokemon) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.snapshot.Items {
		if item.ID == p.ID && p.ID > 0 {
			s.snapshot.Items[i] = item.Merge(p)
			return true
		}
	}
	return false
}

// SetCategories replaces the category facet list.
func (s *Store) SetCategories(categories []pokeapi.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Categories = slices.Clone(categories)
}

// BeginDetail marks a detail load as in flight.
func (s *Store) BeginDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.DetailLoading = true
	s.snapshot.DetailError = nil
}

// SetDetail records the outcome of a detail load.
func (s *Store) SetDetail(p *pokeapi.Pokemon, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.DetailLoading = false
	s.snapshot.DetailError = err
	if err != nil {
		return
	}
	if p == nil {
		s.snapshot.Detail = nil
		return
	}
	dup := *p
	s.snapshot.Detail = &dup
}

// ClearDetail closes the detail view.
func (s *Store) ClearDetail() {
	s.SetDetail(nil, nil)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = slices.Clone(s.snapshot.Items)
	snap.Categories = slices.Clone(s.snapshot.Categories)
	if s.snapshot.Detail != nil {
		dup := *s.snapshot.Detail
		snap.Detail = &dup
	}
	return snap
}
