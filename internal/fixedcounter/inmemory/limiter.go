// Package fcinmemory provides an in-memory implementation of the Fixed Window Counter rate limiting algorithm.
package fcinmemory

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/internal/keystore"
	"keyed.ratelimiter/types"
)

// Limiter implements the Fixed Window Counter algorithm using in-memory storage.
//
// Each key owns one window that starts at its first request after the
// previous window ended and lasts exactly window. Up to limit requests are
// admitted per window; the count resets abruptly when the window ends, so up
// to 2*limit requests can pass around a window boundary.
type Limiter struct {
	key     string
	window  time.Duration
	limit   int
	nowFunc func() time.Time

	windows *keystore.Store[windowState]
}

// windowState is the live window of one identifier. windowStart and
// windowEnd never change after creation; an expired window is replaced in
// the store by a fresh windowState. count is guarded by mu.
type windowState struct {
	mu          sync.Mutex
	windowStart time.Time
	windowEnd   time.Time
	count       int
}

func newWindowState(now time.Time, window time.Duration) *windowState {
	return &windowState{
		windowStart: now,
		windowEnd:   now.Add(window),
	}
}

func (w *windowState) expired(now time.Time) bool {
	return !now.Before(w.windowEnd)
}

// NewLimiterOption is a function type for setting options on a Limiter.
type NewLimiterOption func(*Limiter)

// WithClock sets a custom clock (nowFunc) for the Limiter.
func WithClock(nowFunc func() time.Time) NewLimiterOption {
	return func(l *Limiter) {
		l.nowFunc = nowFunc
	}
}

// NewLimiter creates a new in-memory Fixed Window Counter limiter.
// window and limit must already be validated as positive.
func NewLimiter(key string, window time.Duration, limit int, opts ...NewLimiterOption) *Limiter {
	l := &Limiter{
		key:     key,
		window:  window,
		limit:   limit,
		nowFunc: time.Now,
		windows: keystore.New[windowState](),
	}
	for _, opt := range opts {
		opt(l)
	}
	log.Info().Str("limiter_type", "FixedWindowCounter").Str("backend", "InMemory").Str("limiter_key", key).Dur("window", window).Int("limit", limit).Msg("Limiter: Initialized")
	return l
}

// TryAcquire checks if a request for the given identifier is allowed.
func (l *Limiter) TryAcquire(identifier string) (types.Decision, error) {
	if err := types.ValidateKey(identifier); err != nil {
		log.Debug().Err(err).Str("limiter_type", "FixedWindowCounter").Str("limiter_key", l.key).Msg("Limiter: Rejected identifier")
		return types.Decision{}, err
	}

	for {
		now := l.nowFunc()
		state := l.windows.LoadOrCreate(identifier, func() *windowState {
			return newWindowState(now, l.window)
		})
		if state.expired(now) {
			// Hard reset. Losing the swap means another caller already rolled the window.
			l.windows.Replace(identifier, state, newWindowState(now, l.window))
			continue
		}

		state.mu.Lock()
		// The window may have ended or been replaced while we waited for the lock.
		now = l.nowFunc()
		if state.expired(now) || !l.windows.IsCurrent(identifier, state) {
			state.mu.Unlock()
			continue
		}
		decision := l.admitLocked(state)
		state.mu.Unlock()

		log.Debug().Str("limiter_type", "FixedWindowCounter").Str("limiter_key", l.key).Str("identifier", identifier).Bool("allowed", decision.Allowed).Int("remaining", decision.Remaining).Time("reset_at", decision.ResetAt).Msg("Limiter: Decision")
		return decision, nil
	}
}

// admitLocked applies the counter check. Caller must hold state.mu.
func (l *Limiter) admitLocked(state *windowState) types.Decision {
	if state.count < l.limit {
		state.count++
		return types.Allowed(l.limit-state.count, l.limit, state.windowEnd)
	}
	return types.Denied(l.limit, state.windowEnd)
}

// TrackedKeys returns the number of identifiers holding a window.
func (l *Limiter) TrackedKeys() int {
	return l.windows.Len()
}

var (
	_ types.RateLimiter = (*Limiter)(nil)
	_ types.KeyCounter  = (*Limiter)(nil)
)
