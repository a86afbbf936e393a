// Package query runs list queries against the catalogue and publishes results
// into the shared state store.
//
// A query is a page number, an optional search term, a category filter and a
// sort mode. Run resolves it one of three ways:
//
//   - A non-empty search is an exact lookup by name or ID. A miss yields an
//     empty result rather than an error.
//   - A category filter fetches the whole membership, sorts it and slices out
//     the requested page.
//   - Otherwise one page of the primary listing is fetched and that page alone
//     is sorted.
//
// Every Run takes a new generation number and cancels the run before it. Only
// the current generation may write to the store; older runs return
// ErrSuperseded.
//
// Sorting by base experience needs detail data, so SortList fetches detail for
// every entry concurrently. Entries whose fetch fails sort as zero.
package query
