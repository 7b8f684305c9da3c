// Package metrics provides Prometheus collectors for the pharmainsight API.
//
// HTTP traffic:
//   - http_request_total: counter with method, path and status labels
//   - http_request_duration_seconds: histogram with method and path labels
//   - http_request_in_flight: gauge for concurrent requests
//
// Medicine lookups:
//   - medicine_lookup_total: counter by outcome (success or error kind)
//   - label_api_request_duration_seconds: upstream latency by status code
//   - label_api_up: 1 when the last upstream probe succeeded
//
// Accounts:
//   - account_operations_total: counter by operation and result
//
// Collectors are registered with the default registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medicine_lookup_total",
			Help: "Medicine lookups by outcome",
		},
		[]string{"outcome"},
	)

	LabelAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "label_api_request_duration_seconds",
			Help:    "Label API request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	LabelAPIUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "label_api_up",
			Help: "Whether the last label API probe succeeded (1) or failed (0)",
		},
	)

	AccountOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_operations_total",
			Help: "Account store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets currently tracked",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(LookupTotal)
	prometheus.MustRegister(LabelAPIRequestDuration)
	prometheus.MustRegister(LabelAPIUp)
	prometheus.MustRegister(AccountOperationsTotal)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}
