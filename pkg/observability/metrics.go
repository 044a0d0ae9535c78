package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the proxy. Each collector owns
// its registry, so several can coexist in one process (tests do this).
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// GitHub API metrics
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Pipeline metrics
	CacheLookups *prometheus.CounterVec
	Acquisitions *prometheus.CounterVec
	Queries      *prometheus.CounterVec
	QueryLatency *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RemoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Total number of GitHub API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		RemoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "GitHub API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of response cache lookups by result",
			},
			[]string{"result"},
		),
		Acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "acquisitions_total",
				Help:      "Total number of calendars built, by source",
			},
			[]string{"source"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of dispatched queries by status",
			},
			[]string{"query", "status"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.RemoteCalls,
		c.RemoteDuration,
		c.CacheLookups,
		c.Acquisitions,
		c.Queries,
		c.QueryLatency,
	)

	return c
}

// Registry returns the registry holding this collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRemoteCall records one classified GitHub API call.
func (c *Collector) RecordRemoteCall(endpoint, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.RemoteCalls.WithLabelValues(endpoint, outcome).Inc()
	c.RemoteDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup result: hit, miss, stale or error.
func (c *Collector) RecordCacheLookup(result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// RecordAcquisition records which source produced a freshly built calendar.
func (c *Collector) RecordAcquisition(source string) {
	if c == nil {
		return
	}
	c.Acquisitions.WithLabelValues(source).Inc()
}

// RecordQuery records one query bus dispatch.
func (c *Collector) RecordQuery(query, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.Queries.WithLabelValues(query, status).Inc()
	c.QueryLatency.WithLabelValues(query).Observe(duration.Seconds())
}
