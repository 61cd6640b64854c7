package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors; served on /metrics.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prostore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prostore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prostore",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart service operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	cartConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prostore",
			Subsystem: "cart",
			Name:      "conflict_retries_total",
			Help:      "Optimistic concurrency retries on cart writes.",
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		cartOperations,
		cartConflicts,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordCartOperation(operation, outcome string) {
	cartOperations.WithLabelValues(operation, outcome).Inc()
}

func RecordCartConflict(operation string) {
	cartConflicts.WithLabelValues(operation).Inc()
}
