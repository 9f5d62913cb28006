// Package main is the entry point for the rate limiter demo server.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/middleware"
)

const (
	apiRateLimiterKey       = "api_rate_limit"
	userLoginRateLimiterKey = "user_login_rate_limit"
)

// main parses flags, loads the limiter configuration, sets up HTTP routes
// with rate limiting middleware, and starts the HTTP server.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	port := flag.Int("p", 8080, "Port to run the HTTP server on")
	path := flag.String("config", "config.yaml", "Path to the configuration file")
	logLevelStr := flag.String("log-level", "info", "Logging level (trace, debug, info, warn, error, fatal, panic)")
	flag.Parse()

	logLevel, err := zerolog.ParseLevel(*logLevelStr)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", *logLevelStr).Msg("Invalid log level provided")
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Info().Str("config_path", *path).Msg("Starting application initialization")

	app, err := InitializeApplication(configPath(*path))
	if err != nil {
		log.Fatal().Err(err).Str("config_path", *path).Msg("Application startup failed: Error initializing rate limiters from config")
	}

	mux, err := newRouter(app)
	if err != nil {
		log.Fatal().Err(err).Msg("Application startup failed")
	}

	addr := fmt.Sprintf(":%d", *port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("address", addr).Msg("Starting HTTP server")
	log.Fatal().Err(server.ListenAndServe()).Str("address", addr).Msg("HTTP server stopped")
}

func newRouter(app *application) (*http.ServeMux, error) {
	apiLimiter, apiAlgorithm, err := app.Limiters.lookup(apiRateLimiterKey)
	if err != nil {
		return nil, err
	}
	loginLimiter, loginAlgorithm, err := app.Limiters.lookup(userLoginRateLimiterKey)
	if err != nil {
		return nil, err
	}

	apiRateLimitMiddleware := middleware.NewRateLimitMiddleware(apiLimiter, app.Metrics, apiRateLimiterKey, apiAlgorithm)
	userLoginRateLimitMiddleware := middleware.NewRateLimitMiddleware(loginLimiter, app.Metrics, userLoginRateLimiterKey, loginAlgorithm)

	mux := http.NewServeMux()
	mux.HandleFunc("/unlimited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Unlimited! Let's Go!")
	})

	mux.HandleFunc("/limited", apiRateLimitMiddleware.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Limited, don't over use me!")
	}, middleware.ClientIP))

	mux.HandleFunc("/login", userLoginRateLimitMiddleware.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Login attempt processed!")
	}, middleware.ClientIP))

	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	return mux, nil
}
