package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Cooldown enforces a fixed interval between successive attempts. It is a
// single global token: every caller serializes against the same last-attempt
// timestamp, whatever resource they target.
//
// The stamp is taken when Wait returns (before the caller's network call
// begins), so overlapping callers still space out by the full interval
// even when the calls themselves are slow.
type Cooldown struct {
	interval    time.Duration
	lastAttempt time.Time
	mu          sync.Mutex
}

// NewCooldown creates a cooldown limiter with the given interval
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval}
}

// Allow stamps and returns true if the interval has elapsed since the
// last attempt
func (c *Cooldown) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastAttempt) >= c.interval {
		c.lastAttempt = now
		return true
	}
	return false
}

// Wait blocks until the interval has elapsed since the last attempt, then
// stamps the new attempt time. The sleep happens outside the lock so
// waiters do not block unrelated Allow checks.
func (c *Cooldown) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		now := time.Now()
		remaining := c.interval - now.Sub(c.lastAttempt)
		if remaining <= 0 {
			c.lastAttempt = now
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		if err := sleep(ctx, remaining); err != nil {
			return err
		}
	}
}

// Reset clears the last-attempt stamp so the next call proceeds immediately
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAttempt = time.Time{}
}
