// Package metrics exposes Prometheus counters for sync runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	syncRuns     *prometheus.CounterVec
	syncImages   *prometheus.CounterVec
	syncDuration prometheus.Histogram
	httpRequests *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_sync_runs_total",
			Help: "Sync runs by dry-run flag and final status.",
		}, []string{"dry_run", "status"}),
		syncImages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_sync_images_total",
			Help: "Per-image sync outcomes.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_sync_duration_seconds",
			Help:    "Wall-clock duration of sync runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.syncRuns, m.syncImages, m.syncDuration, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// HTTPRequests exposes the request counter to tests outside this package.
func (m *Metrics) HTTPRequests() *prometheus.CounterVec {
	return m.httpRequests
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveImage(outcome string) {
	if m == nil {
		return
	}
	m.syncImages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRun(dryRun bool, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(strconv.FormatBool(dryRun), status).Inc()
	m.syncDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
