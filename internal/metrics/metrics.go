// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "face_portal"

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests sent to the face recognition API by operation and outcome.",
	}, []string{"operation", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Time until the face recognition API answered, by operation.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 45},
	}, []string{"operation"})

	deleteByName = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delete_by_name_total",
		Help:      "Delete-by-name orchestrations by outcome.",
	}, []string{"outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served by the gateway.",
	}, []string{"method", "route", "status"})
)

// StatusOutcome renders an HTTP status as its class ("2xx", "4xx", ...).
func StatusOutcome(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveDeleteByName records the outcome of one delete-by-name orchestration.
func ObserveDeleteByName(outcome string) {
	deleteByName.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one request served by the gateway.
func ObserveHTTP(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
