package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}

	ctx = WithLayer(ctx, "enc-coastal")
	if got := GetLayer(ctx); got != "enc-coastal" {
		t.Errorf("GetLayer() = %q, want %q", got, "enc-coastal")
	}

	ctx = WithGrid(ctx, "GLOBAL_WEBMERCATOR")
	if got := GetGrid(ctx); got != "GLOBAL_WEBMERCATOR" {
		t.Errorf("GetGrid() = %q, want %q", got, "GLOBAL_WEBMERCATOR")
	}

	ctx = WithChart(ctx, "norway-2024")
	if got := GetChart(ctx); got != "norway-2024" {
		t.Errorf("GetChart() = %q, want %q", got, "norway-2024")
	}

	ctx = WithTraceID(ctx, "trace-abc")
	if got := GetTraceID(ctx); got != "trace-abc" {
		t.Errorf("GetTraceID() = %q, want %q", got, "trace-abc")
	}

	ctx = WithSpanID(ctx, "span-def")
	if got := GetSpanID(ctx); got != "span-def" {
		t.Errorf("GetSpanID() = %q, want %q", got, "span-def")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"RequestID", GetRequestID},
		{"Layer", GetLayer},
		{"Grid", GetGrid},
		{"Chart", GetChart},
		{"TraceID", GetTraceID},
		{"SpanID", GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() = %q, want empty string", tt.name, got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
	}{
		{
			name: "empty context",
			setupCtx: func(ctx context.Context) context.Context {
				return ctx
			},
			wantFields: map[string]string{},
		},
		{
			name: "request ID only",
			setupCtx: func(ctx context.Context) context.Context {
				return WithRequestID(ctx, "req-123")
			},
			wantFields: map[string]string{
				"request_id": "req-123",
			},
		},
		{
			name: "multiple fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-456")
				ctx = WithLayer(ctx, "enc-harbor")
				ctx = WithGrid(ctx, "GLOBAL_GEODETIC")
				return WithChart(ctx, "skagerrak")
			},
			wantFields: map[string]string{
				"request_id": "req-456",
				"layer":      "enc-harbor",
				"grid":       "GLOBAL_GEODETIC",
				"chart":      "skagerrak",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx(context.Background())
			fields := extractContextFields(ctx)

			if len(fields) != len(tt.wantFields)*2 {
				t.Fatalf("extractContextFields() returned %d elements, want %d",
					len(fields), len(tt.wantFields)*2)
			}

			got := make(map[string]string)
			for i := 0; i+1 < len(fields); i += 2 {
				key, _ := fields[i].(string)
				val, _ := fields[i+1].(string)
				got[key] = val
			}

			for key, want := range tt.wantFields {
				if got[key] != want {
					t.Errorf("field %q = %q, want %q", key, got[key], want)
				}
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "debug",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-ctx-1")
	ctx = WithLayer(ctx, "enc-overview")

	cl := NewContextLogger(logger, ctx)
	cl.Info("tile served", "z", 5)

	output := buf.String()
	for _, want := range []string{"req-ctx-1", "enc-overview", "tile served"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output: %s", want, output)
		}
	}
}

func TestContextLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-ctx-2")
	cl := NewContextLogger(logger, ctx).With("grid", "GLOBAL_MERCATOR")
	cl.Warn("extent unavailable")

	output := buf.String()
	for _, want := range []string{"req-ctx-2", "GLOBAL_MERCATOR", "extent unavailable"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output: %s", want, output)
		}
	}
}
