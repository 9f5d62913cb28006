package api

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/config"
	fcinmemory "keyed.ratelimiter/internal/fixedcounter/inmemory"
	swlinmemory "keyed.ratelimiter/internal/slidingwindowlog/inmemory"
	"keyed.ratelimiter/types"
)

// Configure validates limit and window.
// It returns an error wrapping ErrInvalidConfiguration if either is not positive.
func Configure(limit int, window time.Duration) (*config.Config, error) {
	return config.New(limit, window)
}

// NewFixedWindowLimiter creates a Fixed Window Counter limiter.
func NewFixedWindowLimiter(cfg *config.Config, opts ...Option) (types.RateLimiter, error) {
	if cfg == nil || cfg.IsZero() {
		return nil, fmt.Errorf("fixed window limiter requires a config: %w", types.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fixed window limiter: %w", err)
	}
	o := newOptions(opts)
	return fcinmemory.NewLimiter(o.name, cfg.Window, cfg.Limit, fcinmemory.WithClock(o.nowFunc)), nil
}

// NewSlidingWindowLimiter creates a Sliding Window Log limiter.
func NewSlidingWindowLimiter(window time.Duration, limit int, opts ...Option) (types.RateLimiter, error) {
	cfg, err := config.New(limit, window)
	if err != nil {
		return nil, fmt.Errorf("sliding window limiter: %w", err)
	}
	o := newOptions(opts)
	return swlinmemory.NewLimiter(o.name, cfg.Window, cfg.Limit, swlinmemory.WithClock(o.nowFunc)), nil
}

// Factory is responsible for creating Limiter instances based on configuration.
type Factory struct {
	opts []Option
}

// NewFactory creates a new Factory. opts are applied to every limiter it
// creates, before the limiter's own name.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// CreateLimiter creates a limiter for the configured algorithm, named after cfg.Key.
func (f *Factory) CreateLimiter(cfg config.LimiterConfig) (types.RateLimiter, error) {
	log.Debug().Str("limiter_key", cfg.Key).Str("algorithm", string(cfg.Algorithm)).Msg("Factory: Creating limiter")
	if cfg.WindowParams == nil {
		return nil, fmt.Errorf("window parameters are missing in config for key '%s': %w", cfg.Key, types.ErrInvalidConfiguration)
	}
	opts := append(append([]Option{}, f.opts...), WithName(cfg.Key))

	switch cfg.Algorithm {
	case config.FixedWindowCounter:
		limiterCfg, err := cfg.WindowParams.Config()
		if err != nil {
			return nil, fmt.Errorf("key '%s': %w", cfg.Key, err)
		}
		return NewFixedWindowLimiter(limiterCfg, opts...)
	case config.SlidingWindowLog:
		limiter, err := NewSlidingWindowLimiter(cfg.WindowParams.Window, cfg.WindowParams.Limit, opts...)
		if err != nil {
			return nil, fmt.Errorf("key '%s': %w", cfg.Key, err)
		}
		return limiter, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm type '%s' for key '%s': %w", cfg.Algorithm, cfg.Key, types.ErrInvalidConfiguration)
	}
}
