// Package metrics exports rate limiter decisions as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"keyed.ratelimiter/types"
)

const namespace = "ratelimiter"

// Outcome labels.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type RateLimitMetrics struct {
	registerer prometheus.Registerer
	requests   *prometheus.CounterVec
}

// NewRateLimitMetrics creates the decision counter and registers it with reg.
func NewRateLimitMetrics(reg prometheus.Registerer) *RateLimitMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Rate limit decisions by limiter, algorithm and outcome.",
	}, []string{"limiter", "algorithm", "outcome"})
	reg.MustRegister(requests)

	return &RateLimitMetrics{
		registerer: reg,
		requests:   requests,
	}
}

// RecordRequest counts one decision.
func (r *RateLimitMetrics) RecordRequest(limiterKey, algorithm string, allowed bool) {
	outcome := OutcomeRejected
	if allowed {
		outcome = OutcomeAllowed
	}
	r.requests.WithLabelValues(limiterKey, algorithm, outcome).Inc()
}

// RecordError counts a request that produced no decision.
func (r *RateLimitMetrics) RecordError(limiterKey, algorithm string) {
	r.requests.WithLabelValues(limiterKey, algorithm, OutcomeError).Inc()
}

// TrackKeys exports the number of keys held by a limiter as a gauge. Keys
// are never evicted, so this gauge only grows.
func (r *RateLimitMetrics) TrackKeys(limiterKey, algorithm string, counter types.KeyCounter) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "tracked_keys",
		Help:        "Distinct keys holding rate limit state.",
		ConstLabels: prometheus.Labels{"limiter": limiterKey, "algorithm": algorithm},
	}, func() float64 {
		return float64(counter.TrackedKeys())
	})
	return r.registerer.Register(gauge)
}
