package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the loader's Prometheus collectors
type Metrics struct {
	ResourcesTotal     *prometheus.CounterVec
	ResourceErrors     *prometheus.CounterVec
	DecompressDuration *prometheus.HistogramVec
	WorkerSpawns       *prometheus.CounterVec
	WorkersLive        prometheus.Gauge
	BatchDuration      prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ResourcesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageloader_resources_total",
				Help: "Total number of resources processed",
			},
			[]string{"type", "status"},
		),
		ResourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageloader_resource_errors_total",
				Help: "Total number of per-resource failures",
			},
			[]string{"kind"},
		),
		DecompressDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pageloader_decompress_duration_seconds",
				Help:    "Decompression worker round-trip duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"scheme"},
		),
		WorkerSpawns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageloader_worker_spawns_total",
				Help: "Total number of decompression worker startups",
			},
			[]string{"scheme", "status"},
		),
		WorkersLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pageloader_workers_live",
				Help: "Number of live decompression workers",
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pageloader_batch_duration_seconds",
				Help:    "Load batch duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageloader_http_requests_total",
				Help: "Total number of preview server requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pageloader_http_request_duration_seconds",
				Help:    "Preview server request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// RecordResource counts a processed resource. kind is empty on success.
func (m *Metrics) RecordResource(resourceType, kind string) {
	if m == nil {
		return
	}
	status := "loaded"
	if kind != "" {
		status = "failed"
		m.ResourceErrors.WithLabelValues(kind).Inc()
	}
	m.ResourcesTotal.WithLabelValues(resourceType, status).Inc()
}

// RecordDecompress observes one worker round trip
func (m *Metrics) RecordDecompress(scheme string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DecompressDuration.WithLabelValues(scheme).Observe(duration.Seconds())
}

// RecordSpawn counts a worker startup attempt and tracks the live gauge
func (m *Metrics) RecordSpawn(scheme string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.WorkerSpawns.WithLabelValues(scheme, "failed").Inc()
		return
	}
	m.WorkerSpawns.WithLabelValues(scheme, "ready").Inc()
	m.WorkersLive.Inc()
}

// RecordTerminate decrements the live worker gauge
func (m *Metrics) RecordTerminate() {
	if m == nil {
		return
	}
	m.WorkersLive.Dec()
}

// RecordBatch observes a completed batch
func (m *Metrics) RecordBatch(duration time.Duration) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest observes one preview server request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
