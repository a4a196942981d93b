package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "process_cost"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests partitioned by status code, method and route.",
		},
		[]string{"code", "method", "path"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request latency partitioned by method and route.",
			Buckets:   []float64{5, 25, 100, 300, 1000, 5000},
		},
		[]string{"method", "path"},
	)

	estimatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Number of cost estimates partitioned by channel.",
		},
		[]string{"channel"},
	)

	leadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_total",
			Help:      "Number of lead submissions partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	leadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lead_delivery_duration_milliseconds",
			Help:      "Time spent delivering a lead to the webhook, retries included.",
			Buckets:   []float64{50, 250, 1000, 5000, 15000},
		},
		[]string{"outcome"},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open live recalculation connections.",
		},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		estimatesTotal,
		leadsTotal,
		leadDuration,
		wsConnections,
	)
}

// ObserveHTTP records a finished request in the Prometheus collectors
func ObserveHTTP(method, path string, statusCode int, latencyMs int64) {
	httpRequestsTotal.WithLabelValues(strconv.Itoa(statusCode), method, path).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(float64(latencyMs))
}

// Handler exposes the collectors in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Registry returns the registry used by Handler (tests)
func Registry() *prometheus.Registry {
	return registry
}
