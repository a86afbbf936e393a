package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/dexterm/internal/config"
	"github.com/five82/dexterm/internal/favorites"
	"github.com/five82/dexterm/internal/fetch"
	"github.com/five82/dexterm/internal/pokeapi"
	"github.com/five82/dexterm/internal/prefs"
	"github.com/five82/dexterm/internal/query"
	"github.com/five82/dexterm/internal/state"
	"github.com/five82/dexterm/internal/storage"
	"github.com/five82/dexterm/internal/ui"
)

// Options configure the dexterm application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/dexterm/prefs.toml
}

// Run boots the dexterm TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog.Close()
	slog.SetDefault(logger)

	backend, err := storage.Open(ctx, storage.Options{
		Kind:     cfg.StorageBackend,
		Path:     cfg.StoragePath,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	client, err := fetch.NewClient(fetch.Options{
		CacheEntries:      cfg.CacheEntries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.RequestTimeout(),
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("init http client: %w", err)
	}

	gw, err := pokeapi.New(pokeapi.Options{
		BaseURL:     cfg.APIBase,
		Client:      client,
		Logger:      logger,
		Concurrency: cfg.EnrichConcurrency,
	})
	if err != nil {
		return fmt.Errorf("init pokeapi gateway: %w", err)
	}

	favs := favorites.New(favorites.Options{
		Persister:     storage.NewAdapter(backend, logger),
		BaseURL:       gw.BaseURL(),
		SnapshotLimit: cfg.SnapshotLimit,
	})

	orch, err := query.New(query.Options{
		Gateway:  gw,
		Store:    &state.Store{},
		PageSize: cfg.PageSize,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("init query orchestrator: %w", err)
	}

	StartWarmer(ctx, favs, gw, 0, logger)

	logger.Info("dexterm starting",
		slog.String("api_base", gw.BaseURL()),
		slog.String("storage", cfg.StorageBackend),
		slog.Int("favorites", favs.Len()),
	)

	return ui.Run(ui.Options{
		Context:        ctx,
		Orchestrator:   orch,
		Favorites:      favs,
		Prefs:          prefs.Load(opts.PrefsPath),
		PrefsPath:      opts.PrefsPath,
		LogPath:        cfg.LogPath,
		SearchDebounce: cfg.SearchDebounce(),
		Logger:         logger,
	})
}

// setupLogger opens path for appending and returns a text logger at level.
// The terminal belongs to the UI, so logs only go to the file.
func setupLogger(path, level string) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), file, nil
}
