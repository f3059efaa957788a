// Package metrics provides Prometheus metrics collection for the tile gateway.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring tile
// request processing, engine rebuilds, tile caches, and chart repository
// syncs.
//
// # Metrics Categories
//
//   - Request Metrics: Request count, duration, and tile payload sizes by layer
//   - Rebuild Metrics: Rebuild count, duration, engine availability, layer count
//   - Cache Metrics: Cache hits and misses by cache name
//   - Sync Metrics: Repository sync count, duration, and last-sync time
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Record request metrics
//	collector.RecordRequest(
//		"enc-coastal",         // layer
//		"success",             // status
//		120*time.Millisecond,  // duration
//		14252,                 // payload bytes
//	)
//
//	// Record rebuild metrics
//	collector.RecordRebuild("success", 2*time.Second)
//	collector.SetEngineUp(true)
//	collector.SetLayerCount(12)
//
//	// Record cache metrics
//	collector.RecordCacheHit("enc-coastal-cache")
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP tilegate_requests_total Total number of requests processed
//	# TYPE tilegate_requests_total counter
//	tilegate_requests_total{layer="enc-coastal",status="success"} 1234
//
// # Cardinality Management
//
// Layer names come from chart configuration and request paths, so the
// collector caps unique label combinations (1,000 by default) and
// aggregates overflow into "other".
package metrics
