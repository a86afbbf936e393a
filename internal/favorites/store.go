// Package favorites tracks favorited entities and a snapshot cache of entity
// data, writing both through to persistent storage on every mutation.
package favorites

import (
	"slices"
	"sync"

	"github.com/five82/dexterm/internal/pokeapi"
)

const defaultSnapshotLimit = 256

// Persister is the storage the Store writes through to. *storage.Adapter
// implements it.
type Persister interface {
	Favorites() []int
	SetFavorites(ids []int)
	Snapshots() map[int]pokeapi.Pokemon
	SetSnapshots(snapshots map[int]pokeapi.Pokemon)
}

// Options configure a Store.
type Options struct {
	Persister Persister
	BaseURL   string // used to build placeholder URLs
	// SnapshotLimit caps snapshots kept for IDs that are not favorited.
	// Zero uses defaultSnapshotLimit; negative disables the cap.
	SnapshotLimit int
}

// Store holds favorite IDs in insertion order plus a snapshot cache keyed by
// ID. The snapshot cache may hold entries for IDs that are not favorites.
type Store struct {
	persist       Persister
	baseURL       string
	snapshotLimit int

	mu        sync.RWMutex
	ids       []int
	snapshots map[int]pokeapi.Pokemon
	// order records snapshot insertion order for pruning.
	order []int
}

// New loads persisted state and returns a ready Store.
func New(opts Options) *Store {
	limit := opts.SnapshotLimit
	if limit == 0 {
		limit = defaultSnapshotLimit
	}
	s := &Store{
		persist:       opts.Persister,
		baseURL:       opts.BaseURL,
		snapshotLimit: limit,
		snapshots:     make(map[int]pokeapi.Pokemon),
	}
	if s.persist == nil {
		return s
	}

	seen := make(map[int]bool)
	for _, id := range s.persist.Favorites() {
		if id > 0 && !seen[id] {
			seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
	loaded := s.persist.Snapshots()
	keys := make([]int, 0, len(loaded))
	for id := range loaded {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	for _, id := range keys {
		if id <= 0 {
			continue
		}
		s.snapshots[id] = loaded[id]
		s.order = append(s.order, id)
	}
	return s
}

// Toggle adds id when absent and removes it (with its snapshot) when present.
// A non-nil snapshot is stored when adding. It returns the new favorite state.
func (s *Store) Toggle(id int, snapshot *pokeapi.Pokemon) bool {
	if id <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		s.removeLocked(id)
		s.flushLocked()
		return false
	}
	s.ids = append(s.ids, id)
	if snapshot != nil {
		s.upsertLocked(id, *snapshot)
	}
	s.flushLocked()
	return true
}

// Remove drops id and its snapshot. Removing an unknown id still persists.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	s.flushLocked()
}

// Clear empties the favorites and the snapshot cache.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.snapshots = make(map[int]pokeapi.Pokemon)
	s.order = nil
	s.flushLocked()
}

// CacheSnapshot upserts entity data for id regardless of favorite status.
// Existing snapshot fields are kept unless p carries newer values.
func (s *Store) CacheSnapshot(id int, p pokeapi.Pokemon) {
	if id <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(id, p)
	s.pruneLocked()
	s.flushLocked()
}

// IsFavorite reports whether id is favorited.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// IDs returns favorite IDs in insertion order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Snapshot returns the cached entity for id.
func (s *Store) Snapshot(id int) (pokeapi.Pokemon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snapshots[id]
	return p, ok
}

// Snapshots returns a copy of the snapshot cache.
func (s *Store) Snapshots() map[int]pokeapi.Pokemon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]pokeapi.Pokemon, len(s.snapshots))
	for id, p := range s.snapshots {
		out[id] = p
	}
	return out
}

// Resolve materialises favorited entities for display. Each ID resolves to its
// cached snapshot, else the matching entry in list, else a placeholder.
func (s *Store) Resolve(list []pokeapi.Pokemon) []pokeapi.Pokemon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[int]pokeapi.Pokemon, len(list))
	for _, p := range list {
		id := p.ID
		if id == 0 {
			id = pokeapi.IDFromURL(p.URL)
		}
		if id > 0 {
			byID[id] = p
		}
	}

	out := make([]pokeapi.Pokemon, 0, len(s.ids))
	for _, id := range s.ids {
		if p, ok := s.snapshots[id]; ok {
			out = append(out, p)
			continue
		}
		if p, ok := byID[id]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, pokeapi.Placeholder(s.baseURL, id))
	}
	return out
}

func (s *Store) indexOf(id int) int {
	return slices.Index(s.ids, id)
}

func (s *Store) removeLocked(id int) {
	if i := s.indexOf(id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
	if _, ok := s.snapshots[id]; ok {
		delete(s.snapshots, id)
		if i := slices.Index(s.order, id); i >= 0 {
			s.order = slices.Delete(s.order, i, i+1)
		}
	}
}

func (s *Store) upsertLocked(id int, p pokeapi.Pokemon) {
	if p.ID == 0 {
		p.ID = id
	}
	if existing, ok := s.snapshots[id]; ok {
		s.snapshots[id] = existing.Merge(p)
		return
	}
	s.snapshots[id] = p
	s.order = append(s.order, id)
}

// pruneLocked drops the oldest snapshots of non-favorited IDs until the
// non-favorite count is within the limit. Favorite snapshots are never pruned.
func (s *Store) pruneLocked() {
	if s.snapshotLimit < 0 {
		return
	}
	extra := 0
	for _, id := range s.order {
		if s.indexOf(id) < 0 {
			extra++
		}
	}
	if extra <= s.snapshotLimit {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if extra > s.snapshotLimit && s.indexOf(id) < 0 {
			delete(s.snapshots, id)
			extra--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func (s *Store) flushLocked() {
	if s.persist == nil {
		return
	}
	s.persist.SetFavorites(slices.Clone(s.ids))
	snapshots := make(map[int]pokeapi.Pokemon, len(s.snapshots))
	for id, p := range s.snapshots {
		snapshots[id] = p
	}
	s.persist.SetSnapshots(snapshots)
}
