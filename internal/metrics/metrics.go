// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webhook_proxy"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// httpRequestsTotal counts inbound HTTP requests.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDurationSeconds tracks inbound request latency.
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// tokenFetchesTotal counts token endpoint exchanges. Cache hits are not counted.
	tokenFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_fetches_total",
			Help:      "Total number of access token exchanges with the token endpoint",
		},
		[]string{"outcome"},
	)

	tokenCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_hits_total",
			Help:      "Total number of access token requests served from cache",
		},
	)

	// intentRequestsTotal counts detectIntent calls.
	intentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_requests_total",
			Help:      "Total number of detectIntent calls",
		},
		[]string{"outcome"},
	)

	intentRequestDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "intent_request_duration_seconds",
			Help:      "Duration of detectIntent calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	metricsRegistered atomic.Bool
)

// RegisterMetrics registers all collectors with the default registry.
// It is safe to call multiple times.
func RegisterMetrics() {
	if !metricsRegistered.CompareAndSwap(false, true) {
		return
	}

	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		tokenFetchesTotal,
		tokenCacheHitsTotal,
		intentRequestsTotal,
		intentRequestDurationSeconds,
	)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

// ObserveHTTPRequest records one inbound request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTokenFetch records one token endpoint exchange.
func RecordTokenFetch(err error) {
	tokenFetchesTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordTokenCacheHit records a token served without contacting the endpoint.
func RecordTokenCacheHit() {
	tokenCacheHitsTotal.Inc()
}

// RecordIntentRequest records one detectIntent call.
func RecordIntentRequest(err error, duration time.Duration) {
	intentRequestsTotal.WithLabelValues(outcome(err)).Inc()
	intentRequestDurationSeconds.Observe(duration.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
