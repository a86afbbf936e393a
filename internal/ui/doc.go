// Package ui provides the terminal user interface for dexterm.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds all view state; Update handles
// key presses and command results; View renders with Lip Gloss. Data comes
// from a query.Orchestrator, which publishes into a state.Store. The model
// pulls a fresh snapshot on every tick and after each command completes, so
// rendering always reflects the newest committed run.
//
// # Package Structure
//
//   - model.go: Model, Update, key handling, messages and commands
//   - view.go: Layout, the titled box helper and viewport sizing
//   - header.go: Status bar, flash line and command hints
//   - list.go: List and favorites tables with empty, loading and error states
//   - detail.go: Detail pane with type badges, measurements and stat bars
//   - logs.go: Application log view backed by logtail
//   - help.go: Help overlay built from the key map
//   - theme.go, style_helpers.go, keys.go, layout.go: Styling and constants
//
// # Views
//
//   - List: One page of the catalogue, filtered by search or type and sorted
//     by ID, name or base experience
//   - Favorites: Favorited entries resolved from cached snapshots, the loaded
//     list, or placeholders
//   - Logs: Tail of the application log with a minimum level filter
//
// The detail pane opens beside the list on wide terminals and below it on
// narrow ones.
//
// # Debounced Input
//
// Search typing and row enrichment go through debounce.Debouncer. When a
// debouncer fires it pushes a message onto an internal channel; a listener
// command delivers it to Update and re-arms itself. Pressing enter in the
// search box cancels the pending debounce and searches at once.
//
// # Preferences
//
// Changing sort, type filter or theme writes prefs.toml immediately, so the
// next launch restores the same view.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context:      ctx,
//		Orchestrator: orch,
//		Favorites:    favs,
//		Prefs:        prefs.Load(prefsPath),
//		PrefsPath:    prefsPath,
//		LogPath:      cfg.LogPath,
//	})
package ui
