package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// LayerKey is the context key for chart layer names.
	LayerKey contextKey = "layer"

	// GridKey is the context key for tile grid names.
	GridKey contextKey = "grid"

	// ChartKey is the context key for chart set names.
	ChartKey contextKey = "chart"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithLayer adds a chart layer name to the context.
func WithLayer(ctx context.Context, layer string) context.Context {
	return context.WithValue(ctx, LayerKey, layer)
}

// GetLayer retrieves the chart layer name from the context.
func GetLayer(ctx context.Context) string {
	if layer, ok := ctx.Value(LayerKey).(string); ok {
		return layer
	}
	return ""
}

// WithGrid adds a tile grid name to the context.
func WithGrid(ctx context.Context, grid string) context.Context {
	return context.WithValue(ctx, GridKey, grid)
}

// GetGrid retrieves the tile grid name from the context.
func GetGrid(ctx context.Context) string {
	if grid, ok := ctx.Value(GridKey).(string); ok {
		return grid
	}
	return ""
}

// WithChart adds a chart set name to the context.
func WithChart(ctx context.Context, chart string) context.Context {
	return context.WithValue(ctx, ChartKey, chart)
}

// GetChart retrieves the chart set name from the context.
func GetChart(ctx context.Context) string {
	if chart, ok := ctx.Value(ChartKey).(string); ok {
		return chart
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if layer := GetLayer(ctx); layer != "" {
		fields = append(fields, "layer", layer)
	}

	if grid := GetGrid(ctx); grid != "" {
		fields = append(fields, "grid", grid)
	}

	if chart := GetChart(ctx); chart != "" {
		fields = append(fields, "chart", chart)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.Debug(msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.Info(msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.Warn(msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.Error(msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
