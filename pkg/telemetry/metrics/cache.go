package metrics

import (
	"github.com/portolan-hq/tilegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks tile cache performance.
//
// Metrics:
//   - tilegate_cache_hits_total: Total cache hits by cache name
//   - tilegate_cache_misses_total: Total cache misses by cache name
//
// The cache label carries the cache name from the merged configuration
// ("enc-coastal-cache" and the like) or a backend identifier for shared
// caches.
type CacheMetrics struct {
	// Cache hit counter
	hitsTotal *prometheus.CounterVec

	// Cache miss counter
	missesTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
	)

	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit(cacheName string) {
	cm.hitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss(cacheName string) {
	cm.missesTotal.WithLabelValues(cacheName).Inc()
}

// Hit rate is a PromQL concern, not a recording concern:
//
//	rate(tilegate_cache_hits_total{cache="enc-coastal-cache"}[5m]) /
//	(rate(tilegate_cache_hits_total{cache="enc-coastal-cache"}[5m]) +
//	 rate(tilegate_cache_misses_total{cache="enc-coastal-cache"}[5m]))
