package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "socialplus",
			Subsystem: "auth_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "socialplus",
			Subsystem: "auth_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Authentication attempt counters per scheme
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "socialplus",
			Subsystem: "auth_api",
			Name:      "auth_attempts_total",
			Help:      "Total authentication attempts",
		},
		[]string{"scheme", "outcome"},
	)

	// Provider verification duration
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "socialplus",
			Subsystem: "auth_api",
			Name:      "provider_duration_seconds",
			Help:      "Identity provider round trip duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"provider"},
	)

	// Session token counters
	SessionTokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "socialplus",
			Subsystem: "auth_api",
			Name:      "session_tokens_issued_total",
			Help:      "Total session tokens issued",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordAuthAttempt records an authentication attempt and its outcome
func RecordAuthAttempt(scheme, outcome string) {
	AuthAttemptsTotal.WithLabelValues(scheme, outcome).Inc()
}

// RecordProviderCall records a provider verification round trip
func RecordProviderCall(provider string, durationSec float64) {
	ProviderDuration.WithLabelValues(provider).Observe(durationSec)
}

// RecordSessionTokenIssued records one issued session token
func RecordSessionTokenIssued() {
	SessionTokensIssuedTotal.Inc()
}
