package cache

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically evicts entries that have sat unobserved past their
// inactivity window. Without it, a long-lived process would hold every
// result ever fetched.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(store *Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until ctx is cancelled. Call in its own
// goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("cache sweeper started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cache sweeper stopping")
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.logger.Debug("evicted expired cache entries", "count", n)
			}
		}
	}
}
