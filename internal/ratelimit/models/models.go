package models

import "time"

// Limit is a sliding-window quota.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// Valid reports whether the limit can be enforced.
func (l Limit) Valid() bool {
	return l.MaxRequests > 0 && l.Window > 0
}

// Decision is what callers of the limiter act on.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitResult is the store-level outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"` // only set when not allowed
}

// Decision projects the store result onto the caller-facing shape.
func (r *RateLimitResult) Decision() Decision {
	return Decision{Allowed: r.Allowed, Remaining: r.Remaining, RetryAfter: r.RetryAfter}
}
