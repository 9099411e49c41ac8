package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus collectors of the service on a private
// registry, so tests can build as many as they like.
type Registry struct {
	registry *prometheus.Registry

	SearchesTotal     *prometheus.CounterVec
	SearchDuration    *prometheus.HistogramVec
	SearchExpanded    *prometheus.HistogramVec
	UnloadsTotal      *prometheus.CounterVec
	CommitRetries     prometheus.Counter
	ScanCacheLookups  *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disposal_searches_total",
			Help: "Route searches by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
	r.SearchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disposal_search_duration_seconds",
			Help:    "Route search latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"mode"},
	)
	r.SearchExpanded = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disposal_search_expanded_routes",
			Help:    "Routes expanded before a search finished",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"mode"},
	)
	r.UnloadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disposal_unloads_total",
			Help: "Unload requests by contract and outcome",
		},
		[]string{"contract", "outcome"},
	)
	r.CommitRetries = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "disposal_commit_retries_total",
			Help: "Ledger commits retried after a conflict",
		},
	)
	r.ScanCacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disposal_scan_cache_lookups_total",
			Help: "Connected-storage cache lookups by result",
		},
		[]string{"result"},
	)
	r.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disposal_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disposal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	return r
}

// RecordSearch records one engine search.
func (r *Registry) RecordSearch(mode string, found bool, expanded int, duration time.Duration) {
	if r == nil {
		return
	}
	outcome := "not_found"
	if found {
		outcome = "found"
	}
	r.SearchesTotal.WithLabelValues(mode, outcome).Inc()
	r.SearchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	r.SearchExpanded.WithLabelValues(mode).Observe(float64(expanded))
}

func (r *Registry) RecordUnload(contract, outcome string) {
	if r == nil {
		return
	}
	r.UnloadsTotal.WithLabelValues(contract, outcome).Inc()
}

func (r *Registry) RecordCommitRetry() {
	if r == nil {
		return
	}
	r.CommitRetries.Inc()
}

func (r *Registry) RecordScanCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.ScanCacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
