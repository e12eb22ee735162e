package garmin

import (
	"context"
	"sync"
	"time"
)

// Garmin Connect has no published rate limits, but hammering the wellness
// endpoints gets sessions throttled. We self-impose a short window plus a
// minimum interval between requests.

// RateLimiter paces requests to the Connect API.
type RateLimiter struct {
	mu sync.Mutex

	windowLimit    int
	windowUsage    int
	windowResetsAt time.Time

	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a rate limiter with conservative defaults.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windowLimit:    120,
		windowResetsAt: time.Now().Add(time.Minute),
		minInterval:    200 * time.Millisecond,
	}
}

// Wait blocks until a request can be made without exceeding the limits.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.After(r.windowResetsAt) {
		r.windowUsage = 0
		r.windowResetsAt = now.Add(time.Minute)
	}

	if r.windowUsage >= r.windowLimit {
		waitTime := time.Until(r.windowResetsAt)
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
		r.windowUsage = 0
		r.windowResetsAt = time.Now().Add(time.Minute)
	}

	elapsed := time.Since(r.lastRequest)
	if elapsed < r.minInterval {
		waitTime := r.minInterval - elapsed
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
	}

	r.windowUsage++
	r.lastRequest = time.Now()

	return nil
}

// Usage returns the current window usage count.
func (r *RateLimiter) Usage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.windowUsage
}
