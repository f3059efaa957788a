package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSampler maps a sample ratio onto an SDK sampler:
//
//	1.0  AlwaysSample, every trace is recorded
//	0.0  NeverSample, tracing effectively off
//	else TraceIDRatioBased, decided by trace ID hash
//
// The ratio decision is made once at trace creation and propagated to all
// child spans, so either the entire trace is sampled or none of it. The
// trace ID hash keeps the decision consistent across services: the same
// trace ID yields the same decision everywhere.
//
// All samplers are wrapped in ParentBased, which respects the parent
// span's sampling decision when one exists:
//   - parent sampled: child is sampled
//   - parent not sampled: child is not sampled
//   - no parent: use the configured sampler
//
// For low-traffic gateways a ratio of 1.0 is fine; busy installations
// should drop to 0.1 or lower to bound collector volume.
func newSampler(ratio float64) (sdktrace.Sampler, error) {
	if ratio < 0.0 || ratio > 1.0 {
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	}

	var base sdktrace.Sampler
	switch {
	case ratio >= 1.0:
		base = sdktrace.AlwaysSample()
	case ratio <= 0.0:
		base = sdktrace.NeverSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}

	return sdktrace.ParentBased(base), nil
}
