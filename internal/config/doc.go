// Package config loads dexterm runtime settings.
//
// # Resolution Order
//
// Load builds a Config in three layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/dexterm/config.toml
//  3. DEXTERM_* environment variables
//
// A missing config file is not an error. A file that exists but fails to
// parse is. Environment variables are decoded with caarlos0/env using the
// same field set as the TOML keys, upper-cased and prefixed, for example
// DEXTERM_PAGE_SIZE or DEXTERM_STORAGE_BACKEND.
//
// # Default Values
//
//   - API base: https://pokeapi.co/api/v2
//   - Page size: 15
//   - Response cache: 512 entries
//   - Snapshot cache: 256 non-favorite entries
//   - Rate limit: none
//   - Request timeout: none
//   - Search debounce: 500ms
//   - Storage: file backend at ~/.local/share/dexterm/storage.toml
//   - Log file: ~/.local/state/dexterm/dexterm.log at info level
//
// # Storage Backends
//
// storage_backend selects where favorites and snapshots persist:
//
//   - file: a single TOML document holding every key
//   - sqlite: a single key/value table in a SQLite database file
//   - redis: a Redis server; redis_url is required
//   - memory: nothing survives exit
//
// # TOML Format
//
//	api_base = "https://pokeapi.co/api/v2"
//	page_size = 20
//	requests_per_second = 10
//	storage_backend = "sqlite"
//	storage_path = "~/.local/share/dexterm/dexterm.db"
//	log_level = "debug"
//
// Tilde expansion is applied to storage_path and log_path.
package config
