// Package ratelimit implements the sliding-window limiters behind the per-chat command cooldown.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded is returned with a non-nil Result when the key has used up its window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result is the state of one key after a Check.
type Result struct {
	Allowed   bool
	Remaining int
	// ResetAt is when the oldest recorded attempt leaves the window.
	ResetAt time.Time
}

// RetryAfter is the time left until ResetAt, never negative.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r == nil {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Limiter admits up to limit attempts per key within window. Only admitted attempts are recorded.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Sweeper drops limiter entries that have been idle for longer than maxAge.
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
