// Package storage persists favorites state in a string key-value backend.
// Adapter fails soft: read errors and malformed values yield empty defaults,
// and write errors are logged rather than returned.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Backend is a string key-value store.
type Backend interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Options select and configure a backend.
type Options struct {
	Kind     string
	Path     string // file and sqlite backends
	RedisURL string // redis backend
}

// Open builds the backend named by opts.Kind. An empty kind means file.
func Open(ctx context.Context, opts Options) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindFile:
		backend, err = OpenFile(opts.Path)
	case KindSQLite:
		backend, err = OpenSQLite(opts.Path)
	case KindRedis:
		backend, err = OpenRedis(ctx, opts.RedisURL)
	case KindMemory:
		backend = NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}

// Memory keeps items in process memory.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
