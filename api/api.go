package api

import (
	"fmt"

	"github.com/rs/zerolog/log"

	apiinternal "keyed.ratelimiter/api/internal"
	"keyed.ratelimiter/config"
	"keyed.ratelimiter/types"
)

// NewLimitersFromConfigPath loads config and returns the rate limiters and
// their configurations, both keyed by limiter key.
func NewLimitersFromConfigPath(configPath string, opts ...Option) (map[string]types.RateLimiter, map[string]config.LimiterConfig, error) {
	log.Info().Str("config_path", configPath).Msg("API: Initializing rate limiters")
	cfgFile, err := apiinternal.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("config_path", configPath).Msg("API: Error loading configuration")
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return NewLimitersFromConfig(cfgFile.Limiters, opts...)
}

// NewLimitersFromConfig builds one limiter per entry. Keys must be present and unique.
func NewLimitersFromConfig(cfgs []config.LimiterConfig, opts ...Option) (map[string]types.RateLimiter, map[string]config.LimiterConfig, error) {
	if len(cfgs) == 0 {
		return nil, nil, fmt.Errorf("no limiter configurations found: %w", types.ErrInvalidConfiguration)
	}

	factory := NewFactory(opts...)
	limiters := make(map[string]types.RateLimiter, len(cfgs))
	limiterConfigs := make(map[string]config.LimiterConfig, len(cfgs))

	for _, cfg := range cfgs {
		if cfg.Key == "" {
			return nil, nil, fmt.Errorf("limiter configuration missing 'key' field: %w", types.ErrInvalidConfiguration)
		}
		if _, dup := limiters[cfg.Key]; dup {
			return nil, nil, fmt.Errorf("duplicate limiter key '%s': %w", cfg.Key, types.ErrInvalidConfiguration)
		}

		limiter, err := factory.CreateLimiter(cfg)
		if err != nil {
			log.Error().Err(err).Str("limiter_key", cfg.Key).Msg("API: Failed to create limiter")
			return nil, nil, fmt.Errorf("limiter '%s': failed to create instance: %w", cfg.Key, err)
		}

		limiters[cfg.Key] = limiter
		limiterConfigs[cfg.Key] = cfg
		log.Info().Str("limiter_key", cfg.Key).Str("algorithm", string(cfg.Algorithm)).Msg("API: Limiter created")
	}

	return limiters, limiterConfigs, nil
}
