package chathub

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window message limiter keyed by
// "<sessionID>:<userID>". It is process-local bookkeeping only: windows hold
// no authoritative data and are dropped when the connection goes away.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string][]time.Time
	now     func() time.Time // injectable for tests
}

// NewRateLimiter creates a limiter allowing limit events per window per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records an event for key and reports whether it fits in the window.
// Events older than the window are discarded on every call, so a burst is
// allowed again once its first event ages out.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := rl.entries[key][:0]
	for _, t := range rl.entries[key] {
		if now.Sub(t) < rl.window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.entries[key] = recent
		return false
	}

	rl.entries[key] = append(recent, now)
	return true
}

// Clear drops all tracking for key. Called on disconnect.
func (rl *RateLimiter) Clear(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}
