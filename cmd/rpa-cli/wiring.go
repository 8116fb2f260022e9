package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/adapters/capture"
	"github.com/adamzambudio/rpa-lab/internal/adapters/downloader"
	"github.com/adamzambudio/rpa-lab/internal/adapters/fetchcache"
	"github.com/adamzambudio/rpa-lab/internal/adapters/scraper"
	"github.com/adamzambudio/rpa-lab/internal/config"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
	"github.com/adamzambudio/rpa-lab/internal/retry"
)

// buildFetcher returns the configured source, wrapped in the fetch cache when
// one is configured, and a closer for any connection it opened.
func buildFetcher(ctx context.Context, cfg *config.AppConfig, force bool, logger *slog.Logger) (fetchcache.Source, func(), error) {
	var src fetchcache.Source
	switch cfg.Fetch.Mode {
	case config.FetchHTTP:
		src = downloader.NewHTTPFetcher(cfg.Fetch.URL, cfg.Fetch.Output, cfg.Fetch.Timeout)
	default:
		src = scraper.NewRunner(scraper.Config{
			Command:     cfg.Fetch.Command,
			Script:      cfg.Fetch.Script,
			WorkDir:     cfg.Fetch.WorkDir,
			OutputPath:  cfg.Fetch.Output,
			SettleDelay: cfg.Fetch.SettleDelay,
			Timeout:     cfg.Fetch.Timeout,
		})
	}

	noop := func() {}
	switch {
	case cfg.Cache.Redis.Addr != "":
		cache, err := fetchcache.NewRedisCache(ctx, cfg.Cache.Redis)
		if err != nil {
			logger.Warn("Redis cache unavailable, fetching without cache", "addr", cfg.Cache.Redis.Addr, "error", err)
			return src, noop, nil
		}
		logger.Debug("Using Redis dataset cache", "addr", cfg.Cache.Redis.Addr, "ttl", cfg.Cache.Redis.TTL)
		return fetchcache.NewFetcher(src, cache, force, logger), func() { cache.Close() }, nil
	case cfg.Cache.Dir != "":
		logger.Debug("Using local dataset cache", "dir", cfg.Cache.Dir, "max_age", cfg.Cache.MaxAge)
		return fetchcache.NewFetcher(src, fetchcache.NewLocalCache(cfg.Cache.Dir, cfg.Cache.MaxAge), force, logger), noop, nil
	}
	return src, noop, nil
}

func buildCapturer(cfg *config.AppConfig) ports.Capturer {
	if len(cfg.Capture.Command) == 0 {
		return capture.Nop{}
	}
	return capture.NewCommandCapturer(cfg.Capture.Command, cfg.CapturesDir)
}

func policy(cfg *config.AppConfig, attempts int, maxDelay time.Duration) retry.Policy {
	if attempts <= 0 {
		attempts = cfg.Retry.Attempts
	}
	return retry.Policy{
		MaxAttempts: attempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    maxDelay,
	}
}
