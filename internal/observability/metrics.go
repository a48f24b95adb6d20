// Package observability holds the Prometheus collectors shared by the API
// and the relay.
package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fma",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fma",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fma",
		Name:      "submissions_total",
		Help:      "Registration submissions by outcome.",
	}, []string{"outcome"})

	PipelineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fma",
		Name:      "submission_step_failures_total",
		Help:      "Submission pipeline failures by step.",
	}, []string{"step", "critical"})

	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fma",
		Name:      "outbox_events_total",
		Help:      "Outbox events processed by the relay, by result.",
	}, []string{"result"})
)

// RegisterMetricsEndpoint exposes Prometheus metrics on /metrics.
func RegisterMetricsEndpoint(r chi.Router) {
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}
