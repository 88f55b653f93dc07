// Package metrics exposes Prometheus instrumentation for the cache, the
// source adapters, the HTTP server and the task runner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns a private registry so tests can build isolated instances.
type Manager struct {
	registry *prometheus.Registry

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	sourceFetches  *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	sourceLatency  *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	tasksInFlight prometheus.Gauge
	tasksTotal    *prometheus.CounterVec
}

// New builds a Manager with all collectors registered on a fresh registry.
func New() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_cache_hits_total",
			Help: "Cache hits by namespace.",
		}, []string{"namespace"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_cache_misses_total",
			Help: "Cache misses by namespace.",
		}, []string{"namespace"}),
		sourceFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_source_fetches_total",
			Help: "Upstream fetches by source.",
		}, []string{"source"}),
		sourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_source_failures_total",
			Help: "Upstream fetch failures by source.",
		}, []string{"source"}),
		sourceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadscout_source_latency_seconds",
			Help:    "Upstream fetch latency by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadscout_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tasksInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leadscout_tasks_in_flight",
			Help: "Background tasks currently running.",
		}),
		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadscout_tasks_total",
			Help: "Background tasks by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) RecordCacheHit(namespace string)  { m.cacheHits.WithLabelValues(namespace).Inc() }
func (m *Manager) RecordCacheMiss(namespace string) { m.cacheMisses.WithLabelValues(namespace).Inc() }

func (m *Manager) RecordSourceFetch(source string, seconds float64) {
	m.sourceFetches.WithLabelValues(source).Inc()
	m.sourceLatency.WithLabelValues(source).Observe(seconds)
}

func (m *Manager) RecordSourceFailure(source string) {
	m.sourceFailures.WithLabelValues(source).Inc()
}

func (m *Manager) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Manager) TaskStarted()  { m.tasksInFlight.Inc() }
func (m *Manager) TaskFinished() { m.tasksInFlight.Dec() }

func (m *Manager) RecordTask(kind, outcome string) {
	m.tasksTotal.WithLabelValues(kind, outcome).Inc()
}
