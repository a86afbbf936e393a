package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEXTERM_"

// Config holds the runtime settings for dexterm.
type Config struct {
	APIBase               string  `toml:"api_base" env:"API_BASE"`
	PageSize              int     `toml:"page_size" env:"PAGE_SIZE"`
	CacheEntries          int     `toml:"cache_entries" env:"CACHE_ENTRIES"`
	SnapshotLimit         int     `toml:"snapshot_limit" env:"SNAPSHOT_LIMIT"`
	RequestsPerSecond     float64 `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	EnrichConcurrency     int     `toml:"enrich_concurrency" env:"ENRICH_CONCURRENCY"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`
	SearchDebounceMS      int     `toml:"search_debounce_ms" env:"SEARCH_DEBOUNCE_MS"`

	StorageBackend string `toml:"storage_backend" env:"STORAGE_BACKEND"`
	StoragePath    string `toml:"storage_path" env:"STORAGE_PATH"`
	RedisURL       string `toml:"redis_url" env:"REDIS_URL"`

	LogPath  string `toml:"log_path" env:"LOG_PATH"`
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
}

const (
	defaultConfigPath     = "~/.config/dexterm/config.toml"
	defaultAPIBase        = "https://pokeapi.co/api/v2"
	defaultPageSize       = 15
	defaultCacheEntries   = 512
	defaultSnapshotLimit  = 256
	defaultSearchDebounce = 500
	defaultStorage        = "file"
	defaultLogPath        = "~/.local/state/dexterm/dexterm.log"
	defaultLogLevel       = "info"
)

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		APIBase:          defaultAPIBase,
		PageSize:         defaultPageSize,
		CacheEntries:     defaultCacheEntries,
		SnapshotLimit:    defaultSnapshotLimit,
		SearchDebounceMS: defaultSearchDebounce,
		StorageBackend:   defaultStorage,
		LogPath:          mustExpand(defaultLogPath),
		LogLevel:         defaultLogLevel,
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it is missing, then applies DEXTERM_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequestTimeout is the per-request timeout; zero means none.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SearchDebounce is the quiet period before a typed search runs.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

func (c *Config) normalize() error {
	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.CacheEntries <= 0 {
		c.CacheEntries = defaultCacheEntries
	}
	if c.SnapshotLimit == 0 {
		c.SnapshotLimit = defaultSnapshotLimit
	}
	c.RequestsPerSecond = max(c.RequestsPerSecond, 0)
	c.EnrichConcurrency = max(c.EnrichConcurrency, 0)
	c.RequestTimeoutSeconds = max(c.RequestTimeoutSeconds, 0)
	if c.SearchDebounceMS < 0 {
		c.SearchDebounceMS = defaultSearchDebounce
	}

	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case "":
		c.StorageBackend = defaultStorage
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("invalid storage_backend %q", c.StorageBackend)
	}
	if c.StorageBackend == "redis" && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("storage_backend redis requires redis_url")
	}
	c.RedisURL = strings.TrimSpace(c.RedisURL)

	if p := strings.TrimSpace(c.StoragePath); p != "" {
		c.StoragePath = mustExpand(p)
	}
	c.LogPath = strings.TrimSpace(c.LogPath)
	if c.LogPath == "" {
		c.LogPath = defaultLogPath
	}
	c.LogPath = mustExpand(c.LogPath)

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
