package metrics

import (
	"time"

	"github.com/portolan-hq/tilegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for tile and API request processing.
//
// Metrics:
//   - tilegate_requests_total: Total request count by layer, status
//   - tilegate_request_duration_seconds: Request duration histogram by layer
//   - tilegate_tile_bytes: Tile payload size histogram by layer
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Tile payload size in bytes
	tileBytes *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"layer", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"layer"},
		),

		tileBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "tile_bytes",
				Help:      "Size of served tile payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to 2MB
			},
			[]string{"layer"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.tileBytes,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
//
// Parameters:
//   - layer: chart layer name
//   - status: request status ("success", "not_found", "unavailable", "error")
//   - duration: request duration
//   - sizeBytes: response payload size, 0 when unknown
func (rm *RequestMetrics) RecordRequest(layer, status string, duration time.Duration, sizeBytes int) {
	rm.requestsTotal.WithLabelValues(layer, status).Inc()
	rm.requestDuration.WithLabelValues(layer).Observe(duration.Seconds())

	if sizeBytes > 0 {
		rm.tileBytes.WithLabelValues(layer).Observe(float64(sizeBytes))
	}
}
