package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics for the application.
// Domain modules register their own metrics in their metrics packages.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	AuthFailures    prometheus.Counter
	TokenRequests   prometheus.Counter
}

// New creates and registers all HTTP-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fides_http_request_latency_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fides_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		TokenRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_token_requests_total",
			Help: "Total number of token requests",
		}),
	}
}

// IncrementAuthFailures increments the authentication failures counter by 1.
func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

// IncrementTokenRequests increments the token requests counter by 1.
func (m *Metrics) IncrementTokenRequests() {
	m.TokenRequests.Inc()
}

// Middleware records request counts, latency and in-flight gauge per chi route
// pattern. It must be mounted inside the chi router so the route context is
// populated.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.RequestLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
