//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
)

// InitializeApplication builds the limiters, the metrics registry and the
// metrics collector from the config file at path.
func InitializeApplication(path configPath) (*application, error) {
	wire.Build(
		provideLimiterSet,
		provideRegistry,
		provideMetrics,
		wire.Struct(new(application), "*"),
	)
	return nil, nil
}
