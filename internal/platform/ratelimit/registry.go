// Package ratelimit keeps token-bucket limiters keyed by caller.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Registry manages one limiter per key, such as a client IP.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRegistry creates a registry allowing events at limit per second with the
// given burst. A non-positive burst disables limiting.
func NewRegistry(limit rate.Limit, burst int) *Registry {
	return &Registry{
		limiters: make(map[string]*entry),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// PerMinute converts an events-per-minute budget to a rate.Limit.
func PerMinute(events int) rate.Limit {
	if events <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(events))
}

// Allow reports whether one more event for key fits the budget.
func (r *Registry) Allow(key string) bool {
	if r == nil || r.burst <= 0 {
		return true
	}
	now := r.now()
	return r.getOrCreate(key, now).AllowN(now, 1)
}

func (r *Registry) getOrCreate(key string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.limiters[key]; ok {
		existing.lastSeen = now
		return existing.limiter
	}
	created := &entry{limiter: rate.NewLimiter(r.limit, r.burst), lastSeen: now}
	r.limiters[key] = created
	return created.limiter
}

// Prune drops limiters idle for longer than idle.
func (r *Registry) Prune(idle time.Duration) int {
	if r == nil {
		return 0
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, e := range r.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
