package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-retail-auth/guard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	guardDecisions  *prometheus.CounterVec
	loginResults    *prometheus.CounterVec
	idleLogouts     prometheus.Counter
	activeSessions  prometheus.GaugeFunc
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_guard_decisions_total",
			Help: "Route guard outcomes per page.",
		}, []string{"page", "decision"}),
		loginResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_login_results_total",
			Help: "Login and register outcomes.",
		}, []string{"operation", "result"}),
		idleLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_idle_logouts_total",
			Help: "Sessions ended by the idle timer.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.inFlight,
		m.requestsTotal,
		m.requestDuration,
		m.guardDecisions,
		m.loginResults,
		m.idleLogouts,
	)
	return m
}

// trackSessions exposes the number of live client sessions
func (m *Metrics) trackSessions(count func() int) {
	m.activeSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "client_sessions",
		Help: "Client sessions held in memory.",
	}, func() float64 { return float64(count()) })
	m.registry.MustRegister(m.activeSessions)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument measures rate, latency and in-flight requests per route pattern.
func (m *Metrics) Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next(sw, r)

		status := strconv.Itoa(sw.code)
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
	}
}

func (m *Metrics) observeDecision(page string, d guard.Decision) {
	m.guardDecisions.WithLabelValues(page, d.String()).Inc()
}

func (m *Metrics) observeLogin(operation, result string) {
	m.loginResults.WithLabelValues(operation, result).Inc()
}
