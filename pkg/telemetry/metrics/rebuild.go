package metrics

import (
	"time"

	"github.com/portolan-hq/tilegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RebuildMetrics tracks engine rebuild outcomes and serving state.
//
// Metrics:
//   - tilegate_rebuilds_total: Rebuild count by result
//   - tilegate_rebuild_duration_seconds: Rebuild duration histogram
//   - tilegate_engine_up: Engine availability (1=serving, 0=down)
//   - tilegate_last_rebuild_timestamp_seconds: Unix time of the last successful rebuild
//   - tilegate_layers: Number of layers in the active configuration
type RebuildMetrics struct {
	// Rebuild counter by result
	rebuildsTotal *prometheus.CounterVec

	// Rebuild duration histogram
	rebuildDuration prometheus.Histogram

	// Engine availability gauge
	up prometheus.Gauge

	// Unix timestamp of the last successful rebuild
	lastRebuild prometheus.Gauge

	// Active layer count
	layers prometheus.Gauge
}

// NewRebuildMetrics creates and registers rebuild metrics with the provided registry.
func NewRebuildMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RebuildMetrics {
	rm := &RebuildMetrics{
		rebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rebuilds_total",
				Help:      "Total number of engine rebuilds by result",
			},
			[]string{"result"},
		),

		rebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "rebuild_duration_seconds",
				Help:      "Duration of engine rebuilds in seconds",
				// Rebuilds span config parse to full cache wiring.
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
			},
		),

		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "engine_up",
				Help:      "Engine availability (1=serving, 0=down)",
			},
		),

		lastRebuild: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "last_rebuild_timestamp_seconds",
				Help:      "Unix timestamp of the last successful rebuild",
			},
		),

		layers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "layers",
				Help:      "Number of layers in the active configuration",
			},
		),
	}

	registry.MustRegister(
		rm.rebuildsTotal,
		rm.rebuildDuration,
		rm.up,
		rm.lastRebuild,
		rm.layers,
	)

	return rm
}

// RecordRebuild records a rebuild outcome. A "success" result also
// stamps the last-rebuild timestamp.
//
// Parameters:
//   - result: "success", "failure", or "skipped"
//   - duration: rebuild duration
func (rm *RebuildMetrics) RecordRebuild(result string, duration time.Duration) {
	rm.rebuildsTotal.WithLabelValues(result).Inc()
	rm.rebuildDuration.Observe(duration.Seconds())

	if result == "success" {
		rm.lastRebuild.SetToCurrentTime()
	}
}

// SetUp updates the engine availability gauge.
func (rm *RebuildMetrics) SetUp(up bool) {
	if up {
		rm.up.Set(1)
	} else {
		rm.up.Set(0)
	}
}

// SetLayerCount updates the active layer count gauge.
func (rm *RebuildMetrics) SetLayerCount(n int) {
	rm.layers.Set(float64(n))
}
