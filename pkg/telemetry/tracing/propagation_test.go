package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestValidateTraceParent tests traceparent header validation
func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "valid traceparent",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "valid traceparent - not sampled",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        true,
		},
		{
			name:        "invalid - wrong number of parts",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7",
			want:        false,
		},
		{
			name:        "invalid - version wrong length",
			traceparent: "0-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - trace ID wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - parent ID wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902-01",
			want:        false,
		},
		{
			name:        "invalid - flags wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-1",
			want:        false,
		},
		{
			name:        "invalid - non-hex characters in trace ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473g-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - non-hex characters in parent ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902bz-01",
			want:        false,
		},
		{
			name:        "invalid - all-zeros trace ID",
			traceparent: "00-00000000000000000000000000000000-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - all-zeros parent ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01",
			want:        false,
		},
		{
			name:        "empty string",
			traceparent: "",
			want:        false,
		},
		{
			name:        "invalid format",
			traceparent: "invalid",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("ValidateTraceParent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestParseTraceParent tests traceparent header parsing
func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name         string
		traceparent  string
		wantVersion  string
		wantTraceID  string
		wantParentID string
		wantFlags    string
		wantValid    bool
	}{
		{
			name:         "valid traceparent",
			traceparent:  "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			wantVersion:  "00",
			wantTraceID:  "4bf92f3577b34da6a3ce929d0e0e4736",
			wantParentID: "00f067aa0ba902b7",
			wantFlags:    "01",
			wantValid:    true,
		},
		{
			name:         "valid traceparent - not sampled",
			traceparent:  "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			wantVersion:  "00",
			wantTraceID:  "4bf92f3577b34da6a3ce929d0e0e4736",
			wantParentID: "00f067aa0ba902b7",
			wantFlags:    "00",
			wantValid:    true,
		},
		{
			name:         "invalid traceparent",
			traceparent:  "invalid",
			wantVersion:  "",
			wantTraceID:  "",
			wantParentID: "",
			wantFlags:    "",
			wantValid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, traceID, parentID, flags, valid := ParseTraceParent(tt.traceparent)
			if valid != tt.wantValid {
				t.Errorf("ParseTraceParent() valid = %v, want %v", valid, tt.wantValid)
			}
			if version != tt.wantVersion {
				t.Errorf("ParseTraceParent() version = %v, want %v", version, tt.wantVersion)
			}
			if traceID != tt.wantTraceID {
				t.Errorf("ParseTraceParent() traceID = %v, want %v", traceID, tt.wantTraceID)
			}
			if parentID != tt.wantParentID {
				t.Errorf("ParseTraceParent() parentID = %v, want %v", parentID, tt.wantParentID)
			}
			if flags != tt.wantFlags {
				t.Errorf("ParseTraceParent() flags = %v, want %v", flags, tt.wantFlags)
			}
		})
	}
}

// TestIsSampledFromTraceParent tests sampling flag extraction
func TestIsSampledFromTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "sampled (01)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "not sampled (00)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        false,
		},
		{
			name:        "sampled with other flags (03)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-03",
			want:        true,
		},
		{
			name:        "not sampled with other flags (02)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-02",
			want:        false,
		},
		{
			name:        "invalid traceparent",
			traceparent: "invalid",
			want:        false,
		},
		{
			name:        "empty string",
			traceparent: "",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSampledFromTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("IsSampledFromTraceParent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestIsHexString tests hex string validation
func TestIsHexString(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want bool
	}{
		{
			name: "valid lowercase hex",
			s:    "4bf92f3577b34da6a3ce929d0e0e4736",
			want: true,
		},
		{
			name: "valid uppercase hex",
			s:    "4BF92F3577B34DA6A3CE929D0E0E4736",
			want: true,
		},
		{
			name: "valid mixed case hex",
			s:    "4BF92f3577b34DA6a3CE929d0e0e4736",
			want: true,
		},
		{
			name: "invalid - contains g",
			s:    "4bf92f3577b34da6a3ce929d0e0e473g",
			want: false,
		},
		{
			name: "invalid - contains space",
			s:    "4bf92f35 77b34da6a3ce929d0e0e4736",
			want: false,
		},
		{
			name: "empty string",
			s:    "",
			want: true, // Empty string is technically all hex
		},
		{
			name: "valid - all zeros",
			s:    "00000000000000000000000000000000",
			want: true,
		},
		{
			name: "valid - all f's",
			s:    "ffffffffffffffffffffffffffffffff",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHexString(tt.s); got != tt.want {
				t.Errorf("isHexString() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExtract tests trace context extraction from HTTP headers
func TestExtract(t *testing.T) {
	ctx := context.Background()

	// Test with valid traceparent
	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	extractedCtx := Extract(ctx, headers)
	if extractedCtx == nil {
		t.Error("Extract() returned nil context")
	}

	// Test with no traceparent
	headers = http.Header{}
	extractedCtx = Extract(ctx, headers)
	if extractedCtx == nil {
		t.Error("Extract() returned nil context")
	}

	// Test with invalid traceparent
	headers = http.Header{}
	headers.Set("traceparent", "invalid")
	extractedCtx = Extract(ctx, headers)
	if extractedCtx == nil {
		t.Error("Extract() returned nil context")
	}
}

// TestInject tests trace context injection into HTTP headers
func TestInject(t *testing.T) {
	ctx := context.Background()
	headers := http.Header{}

	// Inject should not panic even with no span
	Inject(ctx, headers)
}

// TestHTTPMiddleware tests the HTTP middleware
func TestHTTPMiddleware(t *testing.T) {
	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true

		if r.Context() == nil {
			t.Error("HTTPMiddleware() handler received nil context")
		}

		w.WriteHeader(http.StatusOK)
	})

	middleware := HTTPMiddleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/charts/seamark/10/545/352.png", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("HTTPMiddleware() did not call handler")
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
