package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact submissions by outcome (count)",
		},
		[]string{"outcome"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	RateLimitStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_store_errors_total",
			Help: "Total number of rate limit store failures (count)",
		},
		[]string{"operation"},
	)

	RateLimitSweptRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_swept_records_total",
			Help: "Total number of expired rate limit records removed by sweeps (count)",
		},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"component", "strategy"},
	)

	RelayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total number of relay delivery attempts by result (count)",
		},
		[]string{"status"},
	)

	RelayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_duration_ms",
			Help:    "Relay delivery duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served (count)",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SubmissionsTotal)
		prometheus.MustRegister(RateLimitRequestsTotal)
		prometheus.MustRegister(RateLimitStoreErrorsTotal)
		prometheus.MustRegister(RateLimitSweptRecordsTotal)
		prometheus.MustRegister(FallbackUsageTotal)
		prometheus.MustRegister(RelayRequestsTotal)
		prometheus.MustRegister(RelayDuration)
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}

func IncSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func IncRateLimitDecision(allowed bool) {
	status := "limited"
	if allowed {
		status = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(status).Inc()
}

func IncRateLimitStoreError(operation string) {
	RateLimitStoreErrorsTotal.WithLabelValues(operation).Inc()
}

func AddSweptRecords(n int) {
	if n > 0 {
		RateLimitSweptRecordsTotal.Add(float64(n))
	}
}

func IncFallbackUsage(component, strategy string) {
	FallbackUsageTotal.WithLabelValues(component, strategy).Inc()
}

func ObserveRelay(duration time.Duration, status string) {
	RelayRequestsTotal.WithLabelValues(status).Inc()
	RelayDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
}
