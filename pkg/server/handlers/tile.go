package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/portolan-hq/tilegate/pkg/bridge"
	"github.com/portolan-hq/tilegate/pkg/server/middleware"
	"github.com/portolan-hq/tilegate/pkg/stats"
	"github.com/portolan-hq/tilegate/pkg/telemetry/metrics"
	"github.com/portolan-hq/tilegate/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// TileHandler bridges requests under the tile URL prefix into the embedded
// engine and records the outcome.
type TileHandler struct {
	host    EngineHost
	bridge  *bridge.Bridge
	stats   stats.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	prefix  string
}

// TileHandlerConfig configures NewTileHandler. Host and Bridge are
// required; Stats, Metrics and Tracer are optional and disable their
// concern when nil.
type TileHandlerConfig struct {
	Host    EngineHost
	Bridge  *bridge.Bridge
	Stats   stats.Store
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// Prefix is the mounted URL prefix, stripped before tile coordinates
	// are extracted for accounting. The bridge strips it independently
	// when synthesizing the engine environment.
	Prefix string
}

// NewTileHandler creates a tile request handler.
func NewTileHandler(cfg TileHandlerConfig) *TileHandler {
	return &TileHandler{
		host:    cfg.Host,
		bridge:  cfg.Bridge,
		stats:   cfg.Stats,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		prefix:  cfg.Prefix,
	}
}

// tileRef is the addressing extracted from a tile request path.
type tileRef struct {
	layer  string
	grid   string
	z      int
	x      int
	y      int
	format string
}

// parseTilePath extracts tile addressing from an engine path of the form
// /{layer}/{grid}/{z}/{x}/{y}.{ext}. Reports false for anything else,
// including the capabilities document.
func parseTilePath(path string) (tileRef, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 5 {
		return tileRef{}, false
	}

	name, format, found := strings.Cut(parts[4], ".")
	if !found || name == "" || format == "" {
		return tileRef{}, false
	}

	z, err := strconv.Atoi(parts[2])
	if err != nil {
		return tileRef{}, false
	}
	x, err := strconv.Atoi(parts[3])
	if err != nil {
		return tileRef{}, false
	}
	y, err := strconv.Atoi(name)
	if err != nil {
		return tileRef{}, false
	}

	if parts[0] == "" || parts[1] == "" {
		return tileRef{}, false
	}

	return tileRef{
		layer:  parts[0],
		grid:   parts[1],
		z:      z,
		x:      x,
		y:      y,
		format: format,
	}, true
}

// captureWriter wraps http.ResponseWriter to capture status code and size
// for accounting after the engine has written the response.
type captureWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (cw *captureWriter) WriteHeader(code int) {
	if !cw.written {
		cw.statusCode = code
		cw.written = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.written {
		cw.WriteHeader(http.StatusOK)
	}
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

// ServeHTTP bridges the request into the engine. The engine owns dispatch
// and response production; this handler classifies the outcome for
// metrics, statistics and tracing.
func (h *TileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	path := strings.TrimPrefix(r.URL.Path, h.prefix)
	ref, isTile := parseTilePath(path)

	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.Start(ctx, "tilegate.tile.request")
		defer span.End()

		if isTile {
			tracing.SetLayerAttributes(span, ref.layer, ref.grid)
			tracing.SetTileAttributes(span, ref.z, ref.x, ref.y, ref.format)
		}
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			tracing.SetRequestAttributes(span, requestID)
		}
	}

	cw := &captureWriter{ResponseWriter: w, statusCode: http.StatusOK}

	req := bridge.FromHTTP(r)
	err := h.bridge.Invoke(ctx, h.host.App(), req, bridge.NewHTTPResponder(cw))

	span := tracing.SpanFromContext(ctx)
	status := "success"

	switch {
	case err != nil:
		var notReady *bridge.NotReadyError
		if errors.As(err, &notReady) {
			status = "unavailable"
			if !cw.written {
				writeJSONError(cw, http.StatusServiceUnavailable, "no tile service available")
			}
			tracing.SetErrorAttributes(span, err, "not_ready")
		} else {
			status = "error"
			slog.ErrorContext(ctx, "tile request failed",
				"path", r.URL.Path,
				"error", err,
				"request_id", middleware.GetRequestID(ctx),
			)
			if !cw.written {
				writeJSONError(cw, http.StatusInternalServerError, "tile service error")
			}
			tracing.SetErrorAttributes(span, err, "engine")
		}

	case cw.statusCode == http.StatusNotFound:
		status = "not_found"

	case cw.statusCode >= 400:
		status = "error"
	}

	layerLabel := "none"
	if isTile {
		layerLabel = ref.layer
	}

	if h.metrics != nil {
		h.metrics.RecordRequest(layerLabel, status, time.Since(start), cw.bytes)
	}

	// Tiles come out of caches only, so the tile outcome doubles as a hit
	// or miss on the layer's backing cache.
	if isTile && (status == "success" || status == "not_found") {
		if refs := h.host.Mappings()[ref.layer]; len(refs) > 0 {
			hit := status == "success"
			if h.metrics != nil {
				if hit {
					h.metrics.RecordCacheHit(refs[0].Name)
				} else {
					h.metrics.RecordCacheMiss(refs[0].Name)
				}
			}
			tracing.SetCacheAttributes(span, hit, refs[0].Name)
		}
	}

	if h.stats != nil && isTile && status == "success" {
		if err := h.stats.Record(ctx, ref.layer); err != nil {
			slog.WarnContext(ctx, "failed to record layer request",
				"layer", ref.layer,
				"error", err,
			)
		}
	}

	tracing.SetTileSizeAttribute(span, int64(cw.bytes))
	tracing.SetDurationAttribute(span, time.Since(start).Milliseconds())
}
