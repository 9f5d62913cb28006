// Package api is the public entry point for building per-key rate limiters.
//
// A limiter answers one question per call: may this key proceed now?
//
//	cfg, err := api.Configure(100, time.Minute)
//	if err != nil {
//		return err
//	}
//	limiter, err := api.NewFixedWindowLimiter(cfg)
//	if err != nil {
//		return err
//	}
//	decision, err := limiter.TryAcquire(clientIP)
//
// Limiters are safe for concurrent use. Per-key state is kept for the life
// of the limiter and is never evicted.
package api

import (
	"time"

	"keyed.ratelimiter/config"
	"keyed.ratelimiter/types"
)

type (
	// RateLimiter is the capability shared by every algorithm.
	RateLimiter = types.RateLimiter
	// Decision is the result of RateLimiter.TryAcquire.
	Decision = types.Decision
	// Config is a validated limit and window.
	Config = config.Config
)

var (
	ErrInvalidArgument      = types.ErrInvalidArgument
	ErrInvalidConfiguration = types.ErrInvalidConfiguration
)

// Option configures limiters built by this package.
type Option func(*options)

type options struct {
	name    string
	nowFunc func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		name:    "default",
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithName labels the limiter in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithClock replaces time.Now as the limiter's time source.
func WithClock(nowFunc func() time.Time) Option {
	return func(o *options) {
		o.nowFunc = nowFunc
	}
}
