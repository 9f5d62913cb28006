package config

import (
	"fmt"
	"time"

	"keyed.ratelimiter/types"
)

// AlgorithmType represents the type of rate limiting algorithm.
type AlgorithmType string

const (
	FixedWindowCounter AlgorithmType = "fixed_window_counter"
	SlidingWindowLog   AlgorithmType = "sliding_window_log"
)

// Config is the validated quota shared by every algorithm: at most Limit
// requests per Window for each key.
type Config struct {
	Limit  int
	Window time.Duration
}

// New validates limit and window and returns the resulting Config.
func New(limit int, window time.Duration) (*Config, error) {
	cfg := &Config{Limit: limit, Window: window}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports an error wrapping types.ErrInvalidConfiguration if either
// bound is not positive.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be greater than 0, got %d: %w", c.Limit, types.ErrInvalidConfiguration)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be greater than zero, got %s: %w", c.Window, types.ErrInvalidConfiguration)
	}
	return nil
}

// IsZero reports whether the Config was never set.
func (c Config) IsZero() bool {
	return c.Limit == 0 && c.Window == 0
}

// LimiterConfig holds the configuration for a single rate limiter instance.
type LimiterConfig struct {
	Algorithm AlgorithmType `yaml:"algorithm"`
	Key       string        `yaml:"key"`

	WindowParams *WindowConfig `yaml:"window_params,omitempty"`
}

// WindowConfig holds the window parameters shared by both algorithms.
type WindowConfig struct {
	Window time.Duration `yaml:"window"`
	Limit  int           `yaml:"limit"`
}

// Config converts the window parameters into a validated Config.
func (w *WindowConfig) Config() (*Config, error) {
	return New(w.Limit, w.Window)
}
