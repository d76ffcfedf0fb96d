package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingest pipeline counters exposed on /metrics.
type Metrics struct {
	FramesProcessed    prometheus.Counter
	FactsIngested      prometheus.Counter
	DetectionsOutside  prometheus.Counter
	DetectionsInvalid  prometheus.Counter
	InsertErrors       prometheus.Counter
	ZoneReloads        prometheus.Counter
	ZonesDefined       prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_frames_processed_total",
			Help: "Total camera frames run through the ingest pipeline",
		}),
		FactsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_detections_ingested_total",
			Help: "Total detection facts persisted to the detection log",
		}),
		DetectionsOutside: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_detections_outside_zones_total",
			Help: "Detections discarded in zone-only mode because their center fell outside all zones",
		}),
		DetectionsInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_detections_malformed_total",
			Help: "Raw detections skipped due to missing fields or out-of-range values",
		}),
		InsertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_insert_errors_total",
			Help: "Detection log insert failures",
		}),
		ZoneReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homewatch_zone_reloads_total",
			Help: "Times the pipeline refreshed its zone snapshot",
		}),
		ZonesDefined: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "homewatch_zones_defined",
			Help: "Zones in the pipeline's current snapshot",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.FactsIngested,
		m.DetectionsOutside,
		m.DetectionsInvalid,
		m.InsertErrors,
		m.ZoneReloads,
		m.ZonesDefined,
	)

	return m
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
