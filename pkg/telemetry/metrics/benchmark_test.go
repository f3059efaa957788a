package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Benchmark_Collector_RecordRequest benchmarks request recording
func Benchmark_Collector_RecordRequest(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRequest("enc-coastal", "success", 50*time.Millisecond, 14252)
	}
}

// Benchmark_Collector_RecordRequest_Parallel benchmarks parallel request recording
func Benchmark_Collector_RecordRequest_Parallel(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordRequest("enc-coastal", "success", 50*time.Millisecond, 14252)
		}
	})
}

// Benchmark_Collector_SetEngineUp benchmarks availability updates
func Benchmark_Collector_SetEngineUp(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.SetEngineUp(true)
	}
}

// Benchmark_Collector_RecordCacheHit benchmarks cache hit recording
func Benchmark_Collector_RecordCacheHit(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordCacheHit("enc-coastal-cache")
	}
}

// Benchmark_CardinalityLimiter_Allow benchmarks the limiter fast path
func Benchmark_CardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(1000)
	limiter.Allow("request:enc-coastal:success")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("request:enc-coastal:success")
	}
}
