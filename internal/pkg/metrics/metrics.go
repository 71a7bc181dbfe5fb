// Package metrics exposes Prometheus instrumentation for overlay rendering,
// the upstream evaluation backend and map sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RenderPassesTotal counts completed draw passes by view mode.
	RenderPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_render_passes_total",
			Help: "Total number of overlay draw passes",
		},
		[]string{"view_mode"},
	)

	// CellsDrawnTotal counts rectangles added to a surface.
	CellsDrawnTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "perception_map_cells_drawn_total",
			Help: "Total number of geo cells drawn",
		},
	)

	// CellsSkippedTotal counts cells left out of a draw pass, by failure kind.
	CellsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_cells_skipped_total",
			Help: "Total number of geo cells skipped during drawing",
		},
		[]string{"kind"},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perception_map_render_duration_seconds",
			Help:    "Duration of overlay draw passes in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// BackendRequestsTotal counts calls to the evaluation backend by outcome.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_backend_requests_total",
			Help: "Total number of evaluation backend requests",
		},
		[]string{"outcome"},
	)

	BackendRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perception_map_backend_request_duration_seconds",
			Help:    "Duration of evaluation backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CellsCacheTotal counts year payload cache lookups by result.
	CellsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_cells_cache_total",
			Help: "Year cell cache lookups by result",
		},
		[]string{"result"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "perception_map_sessions_active",
			Help: "Number of mounted map sessions",
		},
	)

	// SupersededFetchesTotal counts year fetches discarded because a newer selection arrived.
	SupersededFetchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "perception_map_superseded_fetches_total",
			Help: "Year fetches discarded in favour of a newer selection",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perception_map_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PrerenderEventsTotal counts refresh events handled by the prerender worker.
	PrerenderEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_map_prerender_events_total",
			Help: "Refresh events processed by the prerender worker by result",
		},
		[]string{"result"},
	)
)

// RecordRender records one finished draw pass.
func RecordRender(viewMode string, drawn int, skippedByKind map[string]int, d time.Duration) {
	RenderPassesTotal.WithLabelValues(viewMode).Inc()
	CellsDrawnTotal.Add(float64(drawn))
	for kind, n := range skippedByKind {
		CellsSkippedTotal.WithLabelValues(kind).Add(float64(n))
	}
	RenderDuration.Observe(d.Seconds())
}

// RecordBackendRequest records one evaluation backend call.
// RecordDecodeSkips counts cells dropped from an upstream payload they could not be decoded from.
func RecordDecodeSkips(n int) {
	if n > 0 {
		CellsSkippedTotal.WithLabelValues("decode").Add(float64(n))
	}
}

func RecordBackendRequest(outcome string, d time.Duration) {
	BackendRequestsTotal.WithLabelValues(outcome).Inc()
	BackendRequestDuration.Observe(d.Seconds())
}

func RecordCacheHit() {
	CellsCacheTotal.WithLabelValues("hit").Inc()
}

func RecordCacheMiss() {
	CellsCacheTotal.WithLabelValues("miss").Inc()
}

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
