package ratelimit

import (
	"context"
	"sync"
	"time"
)

const pruneThreshold = 10000

type window struct {
	start time.Time
	count int64
}

// MemoryLimiter keeps counters in process memory. Suitable for a single
// instance; use the Redis limiter when running several.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*window
	now      func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter using the wall clock.
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

// NewMemoryLimiterWithClock creates an in-memory limiter reading time from now.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*window),
		now:      now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, policy Policy, key string) (Decision, error) {
	start := WindowStart(l.now(), policy.Window)
	fullKey := policy.Name + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.counters[fullKey]
	if !ok || !w.start.Equal(start) {
		if len(l.counters) >= pruneThreshold {
			l.pruneLocked(start)
		}
		w = &window{start: start}
		l.counters[fullKey] = w
	}
	w.count++

	return NewDecision(policy, w.count, start), nil
}

// pruneLocked drops counters whose window started before current.
func (l *MemoryLimiter) pruneLocked(current time.Time) {
	for k, w := range l.counters {
		if w.start.Before(current) {
			delete(l.counters, k)
		}
	}
}

// Len returns the number of tracked counters.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}
