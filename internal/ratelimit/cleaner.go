package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically sweeps idle limiter entries.
type Cleaner struct {
	sweepers []Sweeper
	log      *slog.Logger
	interval time.Duration
	maxAge   time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(log *slog.Logger, interval, maxAge time.Duration, sweepers ...Sweeper) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		sweepers: sweepers,
		log:      log,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the cleaner loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if len(c.sweepers) == 0 || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rate limit cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	cleaned := 0
	for _, s := range c.sweepers {
		if ctx.Err() != nil {
			return
		}
		n, err := s.Sweep(ctx, c.maxAge)
		if err != nil {
			c.log.Error("rate limit sweep failed", slog.Any("error", err))
		}
		cleaned += n
	}

	if cleaned > 0 {
		c.log.Info("rate limit keys cleaned", slog.Int("keys_removed", cleaned))
	}
}
