package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/dexterm/internal/favorites"
	"github.com/five82/dexterm/internal/pokeapi"
)

const (
	defaultWarmInterval = 5 * time.Minute
	maxBackoff          = 30 * time.Second
)

// detailBatcher fetches detail for many entries; *pokeapi.Gateway implements it.
type detailBatcher interface {
	BatchLookup(ctx context.Context, entries []pokeapi.Pokemon) ([]pokeapi.Pokemon, []error)
}

// StartWarmer launches a background goroutine that keeps favorite snapshots
// complete. Favorites with no full snapshot are fetched on start and every
// interval after. Failed rounds retry with exponential backoff. Favorites the
// API no longer knows are skipped for the rest of the session. It returns
// immediately.
func StartWarmer(ctx context.Context, favs *favorites.Store, gw detailBatcher, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	go func() {
		failures := 0
		gone := make(map[int]struct{})
		for {
			missing := warm(ctx, favs, gw, gone, logger)
			wait := interval
			if missing > 0 {
				failures++
				wait = min(calculateBackoff(failures, time.Second), interval)
				logger.Warn("favorite snapshots incomplete",
					slog.Int("missing", missing),
					slog.Duration("retry_in", wait),
				)
			} else {
				failures = 0
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// warm fetches detail for favorites lacking a full snapshot and caches what
// arrives. IDs answered with not found are added to gone and not requested
// again. It returns how many are still incomplete and worth retrying.
func warm(ctx context.Context, favs *favorites.Store, gw detailBatcher, gone map[int]struct{}, logger *slog.Logger) int {
	var pending []pokeapi.Pokemon
	for _, id := range favs.IDs() {
		if _, skip := gone[id]; skip {
			continue
		}
		if snap, ok := favs.Snapshot(id); ok && snap.IsFull() {
			continue
		}
		pending = append(pending, pokeapi.Pokemon{ID: id})
	}
	if len(pending) == 0 {
		return 0
	}
	details, errs := gw.BatchLookup(ctx, pending)
	missing := 0
	for i, p := range details {
		var nf *pokeapi.NotFoundError
		switch {
		case errs[i] == nil:
			favs.CacheSnapshot(p.ID, p)
		case errors.As(errs[i], &nf):
			gone[p.ID] = struct{}{}
			logger.Info("favorite not found upstream, skipping", slog.Int("id", p.ID))
		default:
			missing++
		}
	}
	return missing
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
