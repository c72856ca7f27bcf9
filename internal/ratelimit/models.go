// Package ratelimit applies sliding-window request limits per client IP and
// per authenticated caller.
package ratelimit

import (
	"context"
	"time"
)

// Policy is the number of requests allowed per window for one key.
// A non-positive Limit disables limiting.
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) Enabled() bool {
	return p.Limit > 0 && p.Window > 0
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// Degraded is set when the in-memory fallback answered.
	Degraded bool
}

// RetryAfter is the whole number of seconds until a denied key may retry.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Store records one request against key and reports whether it fits policy.
type Store interface {
	Allow(ctx context.Context, key string, policy Policy) (Result, error)
}
