// Package app is the composition root for dexterm.
//
// # Overview
//
// Run loads configuration, opens the log file and storage backend, builds the
// HTTP client, API gateway, favorites store and query orchestrator, then hands
// them to the UI and blocks until it exits.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Defaults, TOML, DEXTERM_* env
//	       ├─────> setupLogger()        slog text handler on the log file
//	       ├─────> storage.Open()       file, sqlite, redis or memory
//	       ├─────> fetch.NewClient()    Cache, rate limit, cancellation
//	       ├─────> pokeapi.New()        Endpoint mapping
//	       ├─────> favorites.New()      Loads persisted favorites
//	       ├─────> query.New()          List runs into state.Store
//	       ├─────> StartWarmer()        Background snapshot fill
//	       └─────> ui.Run()             Bubble Tea program (blocks)
//
// # Logging
//
// The terminal is owned by the UI, so slog output goes only to the log file
// named by log_path. The UI's log view reads the same file back.
//
// # Snapshot Warmer
//
// StartWarmer keeps favorite snapshots complete so the favorites view renders
// full rows even when the entries are not on the current page. Each round
// fetches detail for favorites that lack it. A round that leaves entries
// incomplete retries with exponential backoff, capped at maxBackoff;
// otherwise the next round waits the full interval.
//
// # Shutdown
//
// Cancelling the context passed to Run stops the warmer, aborts in-flight
// requests and ends the Bubble Tea program. Storage and the log file are
// closed on return.
package app
