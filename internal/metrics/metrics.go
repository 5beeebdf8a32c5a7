// Package metrics defines the Prometheus collectors for query cycles, index
// reloads and HTTP traffic, and exposes a handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cableblog/sitesearch/internal/telemetry"
)

const namespace = "sitesearch"

// Result types for the queries counter.
const (
	ResultHit   = "hit"
	ResultZero  = "zero_result"
	ResultEmpty = "empty"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	QueriesTotal         *prometheus.CounterVec
	QueryDuration        *prometheus.HistogramVec
	QueryResults         prometheus.Histogram
	DanglingTotal        prometheus.Counter
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	IndexDocuments       prometheus.Gauge
	ReloadsTotal         *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total query cycles by result type (hit, zero_result, empty).",
			},
			[]string{"result_type"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query cycle latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		QueryResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_results",
				Help:      "Number of entries rendered per query cycle.",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		DanglingTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dangling_references_total",
				Help:      "Index hits whose reference had no stored post.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Query cycles answered from the result cache.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Query cycles that searched the index.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_documents",
				Help:      "Documents in the index being served.",
			},
		),
		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Index rebuilds triggered by post file changes, by status.",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.QueryResults,
		m.DanglingTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexDocuments,
		m.ReloadsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)

	return m
}

// Record implements the query handler's observer.
func (m *Metrics) Record(e telemetry.QueryEvent) {
	m.QueriesTotal.WithLabelValues(ResultType(e)).Inc()
	m.QueryResults.Observe(float64(e.ResultCount))
	if e.DanglingCount > 0 {
		m.DanglingTotal.Add(float64(e.DanglingCount))
	}

	status := "miss"
	if e.Cached {
		status = "hit"
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
	m.QueryDuration.WithLabelValues(status).Observe(e.Latency.Seconds())
}

// ResultType labels a query cycle for the queries counter.
func ResultType(e telemetry.QueryEvent) string {
	switch {
	case e.QueryType == telemetry.QueryTypeEmpty:
		return ResultEmpty
	case e.ResultCount == 0:
		return ResultZero
	default:
		return ResultHit
	}
}

// RecordReload counts one rebuild attempt.
func (m *Metrics) RecordReload(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ReloadsTotal.WithLabelValues(status).Inc()
}

// SetDocuments sets the served document count.
func (m *Metrics) SetDocuments(n int) {
	m.IndexDocuments.Set(float64(n))
}

// Handler returns the Prometheus scrape HTTP handler for these collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
