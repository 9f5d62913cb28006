// Package swlinmemory provides an in-memory implementation of the Sliding Window Log rate limiting algorithm.
package swlinmemory

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/internal/keystore"
	"keyed.ratelimiter/types"
)

// Limiter implements the Sliding Window Log algorithm using in-memory storage.
//
// Every admitted request's timestamp is kept in a per-identifier log. A
// request at now is admitted if fewer than limit logged timestamps fall in
// (now-window, now]. Timestamps at or before now-window are pruned before
// counting, so a log never holds more than limit entries.
type Limiter struct {
	key     string
	window  time.Duration
	limit   int
	nowFunc func() time.Time

	logs *keystore.Store[requestLog]
}

// requestLog holds the admitted timestamps of one identifier, oldest first.
type requestLog struct {
	mu      sync.Mutex
	entries deque.Deque[time.Time]
}

// NewLimiterOption is a function type for setting options on a Limiter.
type NewLimiterOption func(*Limiter)

// WithClock sets a custom clock (nowFunc) for the Limiter.
func WithClock(nowFunc func() time.Time) NewLimiterOption {
	return func(l *Limiter) {
		l.nowFunc = nowFunc
	}
}

// NewLimiter creates a new in-memory Sliding Window Log limiter.
// window and limit must already be validated as positive.
func NewLimiter(key string, window time.Duration, limit int, opts ...NewLimiterOption) *Limiter {
	l := &Limiter{
		key:     key,
		window:  window,
		limit:   limit,
		nowFunc: time.Now,
		logs:    keystore.New[requestLog](),
	}
	for _, opt := range opts {
		opt(l)
	}
	log.Info().Str("limiter_type", "SlidingWindowLog").Str("backend", "InMemory").Str("limiter_key", key).Dur("window", window).Int("limit", limit).Msg("Limiter: Initialized")
	return l
}

// TryAcquire checks if a request for the given identifier is allowed.
func (l *Limiter) TryAcquire(identifier string) (types.Decision, error) {
	if err := types.ValidateKey(identifier); err != nil {
		log.Debug().Err(err).Str("limiter_type", "SlidingWindowLog").Str("limiter_key", l.key).Msg("Limiter: Rejected identifier")
		return types.Decision{}, err
	}

	reqLog := l.logs.LoadOrCreate(identifier, func() *requestLog { return &requestLog{} })

	reqLog.mu.Lock()
	// Sampled under the lock so appended timestamps stay in non-decreasing order.
	now := l.nowFunc()
	decision := l.admitLocked(reqLog, now)
	reqLog.mu.Unlock()

	log.Debug().Str("limiter_type", "SlidingWindowLog").Str("limiter_key", l.key).Str("identifier", identifier).Bool("allowed", decision.Allowed).Int("remaining", decision.Remaining).Time("reset_at", decision.ResetAt).Msg("Limiter: Decision")
	return decision, nil
}

// admitLocked prunes the log and then applies the count check.
// Pruning must come first. Caller must hold reqLog.mu.
func (l *Limiter) admitLocked(reqLog *requestLog, now time.Time) types.Decision {
	windowStart := now.Add(-l.window)
	for reqLog.entries.Len() > 0 && !reqLog.entries.Front().After(windowStart) {
		reqLog.entries.PopFront()
	}

	if reqLog.entries.Len() < l.limit {
		reqLog.entries.PushBack(now)
		remaining := l.limit - reqLog.entries.Len()
		// Front is now either the oldest surviving entry or the one just added.
		return types.Allowed(remaining, l.limit, reqLog.entries.Front().Add(l.window))
	}
	return types.Denied(l.limit, reqLog.entries.Front().Add(l.window))
}

// TrackedKeys returns the number of identifiers holding a log.
func (l *Limiter) TrackedKeys() int {
	return l.logs.Len()
}

var (
	_ types.RateLimiter = (*Limiter)(nil)
	_ types.KeyCounter  = (*Limiter)(nil)
)
