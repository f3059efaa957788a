package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on
// spans with consistent naming. Standard keys follow OpenTelemetry
// semantic conventions (http.*, rpc.*); gateway-specific keys use the
// "tilegate.*" namespace.

// Common attribute keys used throughout the gateway
const (
	// Layer attributes
	AttrLayer = "tilegate.layer"
	AttrGrid  = "tilegate.grid"
	AttrChart = "tilegate.chart"

	// Tile attributes
	AttrTileZ      = "tilegate.tile.z"
	AttrTileX      = "tilegate.tile.x"
	AttrTileY      = "tilegate.tile.y"
	AttrTileFormat = "tilegate.tile.format"
	AttrTileBytes  = "tilegate.tile.bytes"

	// Request attributes
	AttrRequestID = "tilegate.request_id"

	// Rebuild attributes
	AttrRebuildReason = "tilegate.rebuild.reason"
	AttrRebuildCharts = "tilegate.rebuild.charts"

	// Cache attributes
	AttrCacheHit  = "tilegate.cache.hit"
	AttrCacheName = "tilegate.cache.name"

	// Error attributes
	AttrErrorType    = "tilegate.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration = "tilegate.duration_ms"
)

// SetLayerAttributes sets layer and grid attributes on a span.
//
// Example:
//
//	SetLayerAttributes(span, "seamark", "webmercator")
func SetLayerAttributes(span trace.Span, layer, grid string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLayer, layer),
	}
	if grid != "" {
		attrs = append(attrs, attribute.String(AttrGrid, grid))
	}
	span.SetAttributes(attrs...)
}

// SetTileAttributes sets tile coordinate attributes on a span.
//
// Example:
//
//	SetTileAttributes(span, 10, 545, 352, "png")
func SetTileAttributes(span trace.Span, z, x, y int, format string) {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrTileZ, z),
		attribute.Int(AttrTileX, x),
		attribute.Int(AttrTileY, y),
	}
	if format != "" {
		attrs = append(attrs, attribute.String(AttrTileFormat, format))
	}
	span.SetAttributes(attrs...)
}

// SetTileSizeAttribute records the size of a served tile in bytes.
func SetTileSizeAttribute(span trace.Span, bytes int64) {
	span.SetAttributes(attribute.Int64(AttrTileBytes, bytes))
}

// SetRequestAttributes sets the request ID attribute on a span.
func SetRequestAttributes(span trace.Span, requestID string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
}

// SetRebuildAttributes sets rebuild attributes on a span.
//
// Example:
//
//	SetRebuildAttributes(span, "config changed", 12)
func SetRebuildAttributes(span trace.Span, reason string, charts int) {
	span.SetAttributes(
		attribute.String(AttrRebuildReason, reason),
		attribute.Int(AttrRebuildCharts, charts),
	)
}

// SetCacheAttributes sets cache-related attributes on a span.
//
// Example:
//
//	SetCacheAttributes(span, true, "tile-cache")
func SetCacheAttributes(span trace.Span, hit bool, cacheName string) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "engine")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "service_swapped",
//	    attribute.Int("layers", 12),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithLayer adds layer and grid attributes.
func (ab *AttributeBuilder) WithLayer(layer, grid string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrLayer, layer))
	if grid != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrGrid, grid))
	}
	return ab
}

// WithTile adds tile coordinate attributes.
func (ab *AttributeBuilder) WithTile(z, x, y int, format string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Int(AttrTileZ, z),
		attribute.Int(AttrTileX, x),
		attribute.Int(AttrTileY, y),
	)
	if format != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrTileFormat, format))
	}
	return ab
}

// WithRequest adds the request ID attribute.
func (ab *AttributeBuilder) WithRequest(requestID string) *AttributeBuilder {
	if requestID != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	}
	return ab
}

// WithCache adds cache attributes.
func (ab *AttributeBuilder) WithCache(hit bool, cacheName string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
