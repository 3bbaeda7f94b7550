package store

import (
	"context"
	"log/slog"
	"time"
)

// PurgeCallback is called with the session ID of every purged slot.
type PurgeCallback func(sessionID string)

// SweepConfig controls RunSweeper.
type SweepConfig struct {
	Interval time.Duration
	TTL      time.Duration
}

// RunSweeper periodically purges slots idle longer than cfg.TTL until ctx is
// done. It always returns nil so it can run inside an errgroup.
func RunSweeper(ctx context.Context, repo Repository, cfg SweepConfig, onPurge PurgeCallback) error {
	if cfg.Interval <= 0 || cfg.TTL <= 0 {
		slog.Info("session sweeper disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	slog.Info("session sweeper started", "interval", cfg.Interval, "ttl", cfg.TTL)

	for {
		select {
		case <-ticker.C:
			sweepOnce(ctx, repo, cfg.TTL, onPurge)
		case <-ctx.Done():
			slog.Info("session sweeper shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

func sweepOnce(ctx context.Context, repo Repository, ttl time.Duration, onPurge PurgeCallback) int {
	keys, err := repo.PurgeExpired(ctx, ttl)
	if err != nil {
		slog.Error("session sweeper failed to purge expired slots", "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	for _, key := range keys {
		id, ok := SessionIDFromKey(key)
		if !ok {
			continue
		}
		if onPurge != nil {
			onPurge(id)
		}
	}
	slog.Info("session sweeper purged expired slots", "count", len(keys))
	return len(keys)
}
