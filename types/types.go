// Package types defines common types and interfaces used throughout the rate limiter.
package types

import "time"

// RateLimiter is the interface that all rate limiting algorithms must implement.
// Implementations are safe for concurrent use.
type RateLimiter interface {
	// TryAcquire decides whether a request for the given key may proceed now.
	// It returns an error wrapping ErrInvalidArgument if the key is empty or
	// whitespace-only; in that case no state is created or changed.
	TryAcquire(key string) (Decision, error)
}

// KeyCounter is implemented by limiters that can report how many distinct
// keys they currently hold state for.
type KeyCounter interface {
	TrackedKeys() int
}

// Decision is the outcome of a single TryAcquire call.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// Remaining is the quota left for the key. Always 0 when Allowed is false.
	Remaining int
	// Limit is the configured number of requests per window.
	Limit int
	// ResetAt is the earliest instant at which capacity is guaranteed to free up.
	ResetAt time.Time
}

// Allowed builds an admitting Decision.
func Allowed(remaining, limit int, resetAt time.Time) Decision {
	return Decision{
		Allowed:   true,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   resetAt,
	}
}

// Denied builds a rejecting Decision.
func Denied(limit int, resetAt time.Time) Decision {
	return Decision{
		Allowed:   false,
		Remaining: 0,
		Limit:     limit,
		ResetAt:   resetAt,
	}
}

// RetryAfter returns how long a caller has to wait from now until ResetAt.
// It never returns a negative duration.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
