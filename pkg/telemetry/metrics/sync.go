package metrics

import (
	"time"

	"github.com/portolan-hq/tilegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks chart repository sync runs.
//
// Metrics:
//   - tilegate_syncs_total: Sync run count by result
//   - tilegate_sync_duration_seconds: Sync duration histogram
//   - tilegate_last_sync_timestamp_seconds: Unix time of the last completed sync
type SyncMetrics struct {
	// Sync run counter by result
	syncsTotal *prometheus.CounterVec

	// Sync duration histogram
	syncDuration prometheus.Histogram

	// Unix timestamp of the last completed sync
	lastSync prometheus.Gauge
}

// NewSyncMetrics creates and registers sync metrics with the provided registry.
func NewSyncMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SyncMetrics {
	sm := &SyncMetrics{
		syncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "syncs_total",
				Help:      "Total number of chart repository sync runs by result",
			},
			[]string{"result"},
		),

		syncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of chart repository sync runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0},
			},
		),

		lastSync: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "last_sync_timestamp_seconds",
				Help:      "Unix timestamp of the last completed sync",
			},
		),
	}

	registry.MustRegister(
		sm.syncsTotal,
		sm.syncDuration,
		sm.lastSync,
	)

	return sm
}

// RecordSync records a sync run. Completed runs (updated or unchanged)
// stamp the last-sync timestamp.
//
// Parameters:
//   - result: "updated", "unchanged", or "failure"
//   - duration: sync duration
func (sm *SyncMetrics) RecordSync(result string, duration time.Duration) {
	sm.syncsTotal.WithLabelValues(result).Inc()
	sm.syncDuration.Observe(duration.Seconds())

	if result != "failure" {
		sm.lastSync.SetToCurrentTime()
	}
}
