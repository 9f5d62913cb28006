package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/api"
	"keyed.ratelimiter/config"
	"keyed.ratelimiter/metrics"
	"keyed.ratelimiter/types"
)

// configPath is the location of the limiter YAML file.
type configPath string

// limiterSet holds every configured limiter by key.
type limiterSet struct {
	limiters map[string]types.RateLimiter
	configs  map[string]config.LimiterConfig
}

// lookup returns the limiter registered under key and its algorithm.
func (s *limiterSet) lookup(key string) (types.RateLimiter, config.AlgorithmType, error) {
	limiter, ok := s.limiters[key]
	if !ok {
		return nil, "", fmt.Errorf("rate limiter key '%s' not found in config", key)
	}
	return limiter, s.configs[key].Algorithm, nil
}

// application is the assembled dependency graph.
type application struct {
	Limiters *limiterSet
	Registry *prometheus.Registry
	Metrics  *metrics.RateLimitMetrics
}

func provideLimiterSet(path configPath) (*limiterSet, error) {
	limiters, configs, err := api.NewLimitersFromConfigPath(string(path))
	if err != nil {
		return nil, err
	}
	return &limiterSet{limiters: limiters, configs: configs}, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func provideMetrics(reg *prometheus.Registry, set *limiterSet) (*metrics.RateLimitMetrics, error) {
	m := metrics.NewRateLimitMetrics(reg)
	for key, limiter := range set.limiters {
		counter, ok := limiter.(types.KeyCounter)
		if !ok {
			continue
		}
		if err := m.TrackKeys(key, string(set.configs[key].Algorithm), counter); err != nil {
			return nil, fmt.Errorf("register tracked keys gauge for '%s': %w", key, err)
		}
		log.Debug().Str("limiter_key", key).Msg("Metrics: Tracking keys")
	}
	return m, nil
}
