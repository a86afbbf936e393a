package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/dexterm/internal/pokeapi"
)

// Keys under which favorites state is persisted.
const (
	FavoritesKey = "pokemonFavorites"
	SnapshotsKey = "pokemonFavoritesData"
)

const opTimeout = 2 * time.Second

// StorageError describes a failed read, write or decode. The Adapter logs
// these and never returns them.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Adapter reads and writes favorites state as JSON blobs on a Backend. It
// fails soft: reads fall back to empty values and write failures are logged.
type Adapter struct {
	backend Backend
	logger  *slog.Logger
}

// NewAdapter wraps backend. A nil logger uses slog.Default.
func NewAdapter(backend Backend, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{backend: backend, logger: logger}
}

// Favorites returns the persisted favorite IDs, or an empty slice.
func (a *Adapter) Favorites() []int {
	ids := []int{}
	if !a.load(FavoritesKey, &ids) || ids == nil {
		return []int{}
	}
	return ids
}

// SetFavorites persists ids.
func (a *Adapter) SetFavorites(ids []int) {
	if ids == nil {
		ids = []int{}
	}
	a.store(FavoritesKey, ids)
}

// Snapshots returns the persisted snapshot map, or an empty map.
func (a *Adapter) Snapshots() map[int]pokeapi.Pokemon {
	snapshots := map[int]pokeapi.Pokemon{}
	if !a.load(SnapshotsKey, &snapshots) || snapshots == nil {
		return map[int]pokeapi.Pokemon{}
	}
	return snapshots
}

// SetSnapshots persists snapshots.
func (a *Adapter) SetSnapshots(snapshots map[int]pokeapi.Pokemon) {
	if snapshots == nil {
		snapshots = map[int]pokeapi.Pokemon{}
	}
	a.store(SnapshotsKey, snapshots)
}

func (a *Adapter) load(key string, dest any) bool {
	if a == nil || a.backend == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, ok, err := a.backend.GetItem(ctx, key)
	if err != nil {
		a.report(&StorageError{Op: "read", Key: key, Err: err})
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		a.report(&StorageError{Op: "decode", Key: key, Err: err})
		return false
	}
	return true
}

func (a *Adapter) store(key string, value any) {
	if a == nil || a.backend == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		a.report(&StorageError{Op: "encode", Key: key, Err: err})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := a.backend.SetItem(ctx, key, string(data)); err != nil {
		a.report(&StorageError{Op: "write", Key: key, Err: err})
	}
}

func (a *Adapter) report(err *StorageError) {
	a.logger.Warn("storage operation failed",
		slog.String("op", err.Op),
		slog.String("key", err.Key),
		slog.String("error", err.Err.Error()),
	)
}
