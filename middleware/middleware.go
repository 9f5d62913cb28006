// Package middleware translates rate limit decisions into HTTP responses.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"keyed.ratelimiter/config"
	"keyed.ratelimiter/metrics"
	"keyed.ratelimiter/types"
)

const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
	HeaderRequestID  = "X-Request-Id"
)

// RateLimitMiddleware provides rate limiting functionality.
type RateLimitMiddleware struct {
	limiter    types.RateLimiter
	metrics    *metrics.RateLimitMetrics
	limiterKey string
	algorithm  config.AlgorithmType
	nowFunc    func() time.Time
}

// Option is a function type for setting options on a RateLimitMiddleware.
type Option func(*RateLimitMiddleware)

// WithClock sets the clock used to compute Retry-After.
func WithClock(nowFunc func() time.Time) Option {
	return func(m *RateLimitMiddleware) {
		m.nowFunc = nowFunc
	}
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware.
// limiterKey and algorithm label the recorded metrics.
func NewRateLimitMiddleware(limiter types.RateLimiter, metrics *metrics.RateLimitMetrics, limiterKey string, algorithm config.AlgorithmType, opts ...Option) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limiter:    limiter,
		metrics:    metrics,
		limiterKey: limiterKey,
		algorithm:  algorithm,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle wraps an http.HandlerFunc with rate limiting logic.
// identifierFunc is a function that extracts the identifier (e.g., IP address) from the request.
func (m *RateLimitMiddleware) Handle(next http.HandlerFunc, identifierFunc func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		identifier := identifierFunc(r)
		decision, err := m.limiter.TryAcquire(identifier)
		if err != nil {
			m.metrics.RecordError(m.limiterKey, string(m.algorithm))
			if types.IsInvalidArgument(err) {
				log.Warn().Err(err).Str("request_id", requestID).Str("remote_addr", r.RemoteAddr).Msg("Middleware: Could not extract identifier")
				http.Error(w, "missing client identifier", http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Str("request_id", requestID).Str("identifier", identifier).Msg("Middleware: Error checking rate limit")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		m.metrics.RecordRequest(m.limiterKey, string(m.algorithm), decision.Allowed)
		writeHeaders(w, decision)

		if decision.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := decision.RetryAfter(m.nowFunc())
		w.Header().Set(HeaderRetryAfter, strconv.FormatInt(ceilSeconds(retryAfter), 10))
		log.Info().Str("request_id", requestID).Str("limiter_key", m.limiterKey).Str("identifier", identifier).Dur("retry_after", retryAfter).Msg("Middleware: Request rate limited")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
	}
}

func writeHeaders(w http.ResponseWriter, d types.Decision) {
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(d.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(d.Remaining))
	h.Set(HeaderReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// ClientIP extracts the client's IP address from the request.
// It checks X-Forwarded-For, X-Real-IP headers, and finally the request's RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
