// Package metrics exposes Prometheus collectors for the HTTP service and the
// tracker's domain events.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobtrack"

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

// Metrics owns a private registry so several servers (and tests) can live in
// one process.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	applications *prometheus.CounterVec
	logins       *prometheus.CounterVec
	sessions     prometheus.Gauge
	records      prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "changes_total",
			Help:      "Application records created, updated and deleted.",
		}, []string{"op"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "open_sessions",
			Help:      "Currently open sessions.",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "records",
			Help:      "Application records currently stored.",
		}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.applications,
		m.logins,
		m.sessions,
		m.records,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with request metrics. next should be the
// ServeMux itself so the matched pattern is visible once it returns.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routeLabel(r.Pattern)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// ApplicationCreated, ApplicationUpdated and ApplicationDeleted count store
// mutations; total is the record count afterwards.
func (m *Metrics) ApplicationCreated(total int) { m.applicationChanged("create", total) }

func (m *Metrics) ApplicationUpdated(total int) { m.applicationChanged("update", total) }

func (m *Metrics) ApplicationDeleted(total int) { m.applicationChanged("delete", total) }

func (m *Metrics) applicationChanged(op string, total int) {
	m.applications.WithLabelValues(op).Inc()
	m.records.Set(float64(total))
}

// SetRecords reports the record count, e.g. after seeding.
func (m *Metrics) SetRecords(total int) {
	m.records.Set(float64(total))
}

// Login counts a login attempt. open is the session count afterwards.
func (m *Metrics) Login(result string, open int) {
	m.logins.WithLabelValues(result).Inc()
	m.sessions.Set(float64(open))
}

// SetSessions reports the open session count.
func (m *Metrics) SetSessions(open int) {
	m.sessions.Set(float64(open))
}

// routeLabel strips the method from a ServeMux pattern: "GET /x/{id}" becomes
// "/x/{id}". Unmatched requests share one label to bound cardinality.
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
