package ratelimit

import (
	"context"
	"sync"
	"time"
)

// entry is one client's window: admitted attempts and the window start.
type entry struct {
	windowStart time.Time
	count       int
}

// Memory is an in-process fixed-window limiter. All admission checks for the
// same key share one window; counts are updated under a single mutex so
// concurrent requests can neither lose nor double-count an attempt.
type Memory struct {
	buckets map[string]*entry
	now     func() time.Time
	limit   int
	window  time.Duration
	mu      sync.Mutex
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock overrides the time source. Used by tests to advance the window.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates a limiter admitting at most limit attempts per window
// for each endpoint+client pair.
func NewMemory(limit int, window time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		buckets: make(map[string]*entry),
		now:     time.Now,
		limit:   limit,
		window:  window,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Admit records one attempt and reports whether it is within the limit.
// Expired windows reset lazily on the next attempt from that client.
func (m *Memory) Admit(_ context.Context, endpoint, client string) (Decision, error) {
	key := bucketKey(endpoint, client)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.windowStart) >= m.window {
		b = &entry{windowStart: now}
		m.buckets[key] = b
	}

	if b.count >= m.limit {
		return Decision{
			RetryAfter: b.windowStart.Add(m.window).Sub(now),
		}, nil
	}

	b.count++
	return Decision{Allowed: true, Remaining: m.limit - b.count}, nil
}

// Prune drops buckets whose window has elapsed and returns how many were
// removed. Run it periodically so idle clients do not accumulate forever.
func (m *Memory) Prune() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, b := range m.buckets {
		if now.Sub(b.windowStart) >= m.window {
			delete(m.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live buckets. Used by tests and metrics.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
