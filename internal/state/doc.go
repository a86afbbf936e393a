// Package state holds the shared, thread-safe view of list and detail data
// for dexterm.
//
// # Overview
//
// The query orchestrator writes results into a Store; the UI reads immutable
// Snapshots from it on every tick. The Store is the only place the two sides
// meet.
//
//	Producer (Orchestrator):        Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ Begin(q, gen)    │           │                  │
//	│ fetch + sort     │           │                  │
//	│ Finish/Fail(gen) │──────────→│ store.Snapshot() │
//	│ MergeItem(p)     │  (mutex)  │ render           │
//	└──────────────────┘           └──────────────────┘
//
// # Generations
//
// Every list run carries a generation number. Begin records it and clears the
// previous items and error. Finish and Fail only apply when their generation
// still matches; a slower, older run that completes after a newer one began
// is dropped and the caller is told so via the false return. This is how
// newest-wins is enforced at the state layer.
//
// # Query
//
// Query is the value describing what the list should show: page, search
// term, category and sort. Its With* helpers return a copy with the page
// reset to 1, since any filter change invalidates the current page.
//
// # Detail
//
// Detail state is independent of list generations. BeginDetail marks a load
// in flight; SetDetail records the result. A failed detail load keeps the
// previously shown entity and sets DetailError next to it.
//
// # Error Handling
//
// Fail increments ConsecutiveFailures; Finish resets it. IsOffline reports two
// or more failures in a row, which the header uses to show an offline marker.
// Snapshot wraps LastError so callers can still errors.As through it.
package state
