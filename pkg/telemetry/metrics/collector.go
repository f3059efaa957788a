package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/portolan-hq/tilegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in the tile
// gateway. It manages metric registration and provides a unified
// interface for recording metrics across components.
//
// Layer names come from chart configuration and request paths, so the
// collector guards the layer label with a cardinality limit.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Tile and API request metrics
	requestMetrics *RequestMetrics

	// Engine rebuild metrics
	rebuildMetrics *RebuildMetrics

	// Tile cache metrics
	cacheMetrics *CacheMetrics

	// Chart repository sync metrics
	syncMetrics *SyncMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "tilegate",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "tilegate"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Tile serving sits in the default latency range.
		cfg.RequestDurationBuckets = prometheus.DefBuckets
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000), // Max 1K unique label sets
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.rebuildMetrics = NewRebuildMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)
	c.syncMetrics = NewSyncMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed tile or API request.
//
// Parameters:
//   - layer: chart layer name, or "none" for non-tile requests
//   - status: request status ("success", "not_found", "unavailable", "error")
//   - duration: total request duration
//   - sizeBytes: response payload size, 0 when unknown
//
// Unknown layer names beyond the cardinality limit are aggregated into
// "other".
func (c *Collector) RecordRequest(layer, status string, duration time.Duration, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("request:%s:%s", layer, status)
	if !c.cardinalityLimiter.Allow(labelSet) {
		layer = "other"
	}

	c.requestMetrics.RecordRequest(layer, status, duration, sizeBytes)
}

// RecordRebuild records the outcome of an engine rebuild.
//
// Parameters:
//   - result: "success", "failure", or "skipped"
//   - duration: rebuild duration
func (c *Collector) RecordRebuild(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.rebuildMetrics.RecordRebuild(result, duration)
}

// SetEngineUp updates the engine availability gauge (1=serving, 0=down).
func (c *Collector) SetEngineUp(up bool) {
	if !c.config.Enabled {
		return
	}

	c.rebuildMetrics.SetUp(up)
}

// SetLayerCount updates the active layer count gauge.
func (c *Collector) SetLayerCount(n int) {
	if !c.config.Enabled {
		return
	}

	c.rebuildMetrics.SetLayerCount(n)
}

// RecordCacheHit records a tile cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a tile cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordSync records the outcome of a chart repository sync run.
//
// Parameters:
//   - result: "updated", "unchanged", or "failure"
//   - duration: sync duration
func (c *Collector) RecordSync(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.syncMetrics.RecordSync(result, duration)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
