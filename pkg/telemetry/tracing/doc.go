// Package tracing provides OpenTelemetry distributed tracing for the tile
// gateway.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span
// creation, and trace export over OTLP gRPC. It gives visibility into a
// tile request as it moves through the gateway: request handling, cache
// reads, and configuration rebuilds.
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Usage
//
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "tilegate",
//	    SampleRatio: 0.1,
//	    Insecure:    true,
//	}
//	tracer, err := tracing.New(cfg, buildVersion)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "tilegate.tile.request")
//	defer span.End()
//
//	tracing.SetLayerAttributes(span, "seamark", "webmercator")
//	tracing.SetTileAttributes(span, 10, 545, 352, "png")
//
// # Span Hierarchy
//
// Spans form a hierarchy representing the call tree:
//
//	tilegate.tile.request (6ms)
//	└── tilegate.cache.lookup (1ms)
//
//	tilegate.engine.rebuild (800ms)
//	├── tilegate.charts.merge (30ms)
//	└── tilegate.engine.build (750ms)
//
// # HTTP Integration
//
// Extract trace context from incoming HTTP requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "handle_tile")
//	defer span.End()
//
// Inject trace context into outgoing requests, for example toward a
// remote tile cache:
//
//	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
//	tracing.Inject(ctx, req.Header)
//
// # Sampling
//
// Sampling is ratio based and parent aware: a sample_ratio of 1.0 records
// every trace, 0.0 records none, and anything between is decided by the
// trace ID hash so the whole trace is either kept or dropped. When tracing
// is disabled a noop tracer is used and span creation costs under a
// microsecond.
package tracing
