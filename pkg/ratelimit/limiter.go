// Package ratelimit throttles inbound requests per client.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter implements sliding window rate limiting
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      atomic.Int64
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	requests []time.Time
	mu       sync.Mutex
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		windowSize: windowSize,
		now:        time.Now,
	}
	l.limit.Store(int64(limit))
	return l
}

// SetLimit changes the number of requests allowed per window. Requests
// already recorded keep counting against the new limit.
func (l *SlidingWindowLimiter) SetLimit(limit int) {
	l.limit.Store(int64(limit))
}

// Limit returns the number of requests allowed per window
func (l *SlidingWindowLimiter) Limit() int {
	return int(l.limit.Load())
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	w.requests = trim(w.requests, now.Add(-l.windowSize))

	if int64(len(w.requests)) >= l.limit.Load() {
		return false, nil
	}

	w.requests = append(w.requests, now)
	return true, nil
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// Prune drops keys with no requests inside the window. It returns the number
// of keys removed.
func (l *SlidingWindowLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.windowSize)
	removed := 0
	for key, w := range l.windows {
		w.mu.Lock()
		w.requests = trim(w.requests, cutoff)
		empty := len(w.requests) == 0
		w.mu.Unlock()
		if empty {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// trim drops timestamps at or before cutoff; requests are kept in arrival order.
func trim(requests []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(requests) && !requests[i].After(cutoff) {
		i++
	}
	return requests[i:]
}

// IPRateLimiter wraps a rate limiter for IP-based limiting
type IPRateLimiter struct {
	limiter *SlidingWindowLimiter
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute),
	}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("ip:%s", ip))
}

// Limit returns the configured requests per minute
func (l *IPRateLimiter) Limit() int {
	return l.limiter.Limit()
}

// SetLimit changes the requests allowed per minute for every client
func (l *IPRateLimiter) SetLimit(requestsPerMinute int) {
	l.limiter.SetLimit(requestsPerMinute)
}

// Run prunes idle clients every interval until ctx is cancelled.
func (l *IPRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.limiter.Prune()
		}
	}
}
