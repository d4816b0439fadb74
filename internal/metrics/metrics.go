package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	cacheEvents  *prometheus.CounterVec
	dashboards   *prometheus.CounterVec
}

// New registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetdash",
			Name:      "fetch_total",
			Help:      "Upstream requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sheetdash",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetdash",
			Name:      "cache_events_total",
			Help:      "Dataset cache hits and misses.",
		}, []string{"event"}),
		dashboards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetdash",
			Name:      "dashboards_total",
			Help:      "Dashboards built, by status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.fetchLatency,
		m.cacheEvents,
		m.dashboards,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveFetch records one upstream request. kind is "csv", "sheets" or "geojson".
func (m *Metrics) ObserveFetch(kind string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(kind, outcome).Inc()
	m.fetchLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// CacheHit counts a dataset cache hit.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheEvents.WithLabelValues("hit").Inc()
	}
}

// CacheMiss counts a dataset cache miss.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheEvents.WithLabelValues("miss").Inc()
	}
}

// DashboardBuilt counts a dashboard by its status.
func (m *Metrics) DashboardBuilt(status string) {
	if m != nil {
		m.dashboards.WithLabelValues(status).Inc()
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
