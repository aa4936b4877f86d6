// Package metrics exposes Prometheus instrumentation for snapshot refreshes,
// engine computations and the read API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "trustmap_"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Collector owns its registry so tests and multiple servers never collide on
// the global default registry. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	computeLatency    *prometheus.HistogramVec
	snapshotRefreshes *prometheus.CounterVec
	snapshotRecords   *prometheus.GaugeVec
	snapshotWarnings  prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		computeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "compute_duration_seconds",
			Help:    "Time spent deriving a view from the snapshot",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation"}),
		snapshotRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "snapshot_refreshes_total",
			Help: "Snapshot reloads by result",
		}, []string{"result"}),
		snapshotRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_records",
			Help: "Records in the current snapshot by collection",
		}, []string{"collection"}),
		snapshotWarnings: factory.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_warnings",
			Help: "Validation warnings raised while normalizing the current snapshot",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "http_requests_total",
			Help: "Read API requests by route and status",
		}, []string{"route", "method", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "http_request_duration_seconds",
			Help:    "Read API latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveCompute records how long an engine operation took.
func (c *Collector) ObserveCompute(operation string, d time.Duration) {
	if c == nil {
		return
	}
	c.computeLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordRefresh counts a snapshot reload attempt.
func (c *Collector) RecordRefresh(err error) {
	if c == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	c.snapshotRefreshes.WithLabelValues(result).Inc()
}

// SetSnapshotSize publishes per-collection record counts and the warning count.
func (c *Collector) SetSnapshotSize(records map[string]int, warnings int) {
	if c == nil {
		return
	}
	for collection, n := range records {
		c.snapshotRecords.WithLabelValues(collection).Set(float64(n))
	}
	c.snapshotWarnings.Set(float64(warnings))
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(route, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
