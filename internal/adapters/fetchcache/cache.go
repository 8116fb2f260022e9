// Package fetchcache lets fetched datasets be reused while they are still fresh.
package fetchcache

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
)

// Source is a fetcher that knows where it writes its dataset.
type Source interface {
	ports.Fetcher
	OutputPath() string
}

// Fetcher serves datasets from a cache and falls back to the wrapped source.
// Cache failures are logged and treated as misses.
type Fetcher struct {
	next   Source
	cache  ports.DatasetCache
	force  bool
	logger *slog.Logger
}

// NewFetcher wraps next with cache. When force is set the cache is never read.
func NewFetcher(next Source, cache ports.DatasetCache, force bool, logger *slog.Logger) *Fetcher {
	return &Fetcher{next: next, cache: cache, force: force, logger: logger}
}

// Fetch implements ports.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, locationKey string) (domain.FetchedDataset, error) {
	key := cacheKey(locationKey)
	if !f.force {
		ds, ok, err := f.cache.Load(ctx, key, f.next.OutputPath())
		switch {
		case err != nil:
			f.logger.Warn("Dataset cache read failed", "city", locationKey, "error", err)
		case ok:
			f.logger.Info("Using cached dataset", "city", locationKey, "fetched_at", ds.FetchedAt)
			ds.Cached = true
			return ds, nil
		}
	}

	ds, err := f.next.Fetch(ctx, locationKey)
	if err != nil {
		return ds, err
	}
	if err := f.cache.Store(ctx, key, ds); err != nil {
		f.logger.Warn("Dataset cache write failed", "city", locationKey, "error", err)
	}
	return ds, nil
}

// OutputPath returns the wrapped source's dataset location.
func (f *Fetcher) OutputPath() string {
	return f.next.OutputPath()
}

func cacheKey(locationKey string) string {
	return strings.ToLower(strings.TrimSpace(locationKey))
}
