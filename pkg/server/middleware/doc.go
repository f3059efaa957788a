// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common functionality
// across all HTTP requests including request ID generation, logging, and
// panic recovery.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(RequestID(Logging(TraceContext(handler))))
//
// Order (innermost to outermost):
//  1. TraceContext: Extract W3C trace context from incoming headers
//  2. Logging: Log request/response details
//  3. RequestID: Generate and propagate request ID
//  4. Recovery: Recover from panics
//
// RequestID sits outside Logging so the log lines carry the ID.
//
// # Request ID
//
// RequestIDMiddleware generates a unique ID for each request using UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The request ID is:
//   - Added to context for handler access
//   - Included in response headers
//   - Logged with all request/response logs
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record request details:
//
//	{
//	  "time": "2026-03-01T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/charts/seamark/webmercator/10/545/352.png",
//	  "status": 200,
//	  "latency_ms": 12,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// # Recovery
//
// RecoveryMiddleware catches panics in handlers and converts them to HTTP 500
// errors. The panic stack trace is logged but not exposed to clients.
// http.ErrAbortHandler passes through so aborted responses keep their
// net/http semantics.
//
// # Context Values
//
// Middleware stores values in context for handler access:
//
//	requestID := middleware.GetRequestID(r.Context())
//	startTime := middleware.GetStartTime(r.Context())
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
