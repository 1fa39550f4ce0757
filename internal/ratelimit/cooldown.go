package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Cooldown admits at most one gated command per chat within the window.
type Cooldown struct {
	limiter Limiter
	window  time.Duration
	now     func() time.Time
}

// NewCooldown builds a per-chat cooldown on top of limiter.
func NewCooldown(limiter Limiter, window time.Duration) *Cooldown {
	return &Cooldown{limiter: limiter, window: window, now: time.Now}
}

// Window returns the cooldown window.
func (c *Cooldown) Window() time.Duration {
	return c.window
}

// Allow records the attempt for chatID when it is admitted. Rejected attempts
// return the time left until the chat may send another gated command.
func (c *Cooldown) Allow(ctx context.Context, chatID int64) (bool, time.Duration, error) {
	result, err := c.limiter.Check(ctx, "cooldown:"+strconv.FormatInt(chatID, 10), 1, c.window)
	switch {
	case err == nil:
		return true, 0, nil
	case errors.Is(err, ErrLimitExceeded):
		if result == nil {
			return false, c.window, nil
		}
		return false, result.RetryAfter(c.now()), nil
	default:
		return false, 0, err
	}
}
