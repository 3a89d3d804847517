// Package ratelimit implements fixed-window request counting per client key.
package ratelimit

import (
	"context"
	"time"
)

// Policy is a named fixed-window limit.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// Decision is the outcome of counting one request against a policy.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests. Each Allow call increments the counter for
// (policy, key) in the current window and compares it against the limit as
// one indivisible step.
type Limiter interface {
	Allow(ctx context.Context, policy Policy, key string) (Decision, error)
}

// WindowStart returns the start of the wall-clock window containing now.
func WindowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

// NewDecision builds the decision for a post-increment count.
func NewDecision(policy Policy, count int64, windowStart time.Time) Decision {
	remaining := int64(policy.Limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: int(remaining),
		ResetAt:   windowStart.Add(policy.Window),
	}
}
