// Package fetch is the HTTP layer dexterm uses to talk to the catalogue API.
//
// # Overview
//
// Client performs GET requests and caches successful response bodies by exact
// URL in a bounded LRU (hashicorp/golang-lru). Repeated requests for the same
// URL are served from the cache without touching the network.
//
// # Newest Wins
//
// Get is for requests where only the latest answer matters, such as list
// pages. Starting a Get cancels whichever Get is still pending on the same
// Client. The superseded call returns a *CancelledError, which matches
// ErrCancelled through errors.Is, and its response is never cached.
//
// Fetch shares the cache but sits outside that chain. It is used for detail
// fan-out, where many requests run at once and none should cancel another.
//
//	body, err := client.Get(ctx, url)
//	switch {
//	case errors.Is(err, fetch.ErrCancelled):
//		// a newer request replaced this one
//	case fetch.IsNotFound(err):
//		// 404
//	case err != nil:
//		// transport or status failure
//	}
//
// Cancelling the caller's context is not a supersede: the call returns the
// context error unchanged.
//
// # Rate Limiting and Timeouts
//
// RequestsPerSecond enables a golang.org/x/time/rate limiter shared by Get
// and Fetch. Timeout sets an http.Client timeout. Both are off by default.
//
// # Errors
//
//   - *TransportError: non-2xx status, inspect with StatusCode or IsNotFound
//   - *CancelledError: superseded Get
//   - wrapped net/http and io errors for everything else
package fetch
