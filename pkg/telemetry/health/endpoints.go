package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.4.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns an HTTP handler for the liveness probe endpoint.
// It performs a simple check to verify the process is alive.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler returns an HTTP handler for the readiness probe endpoint.
// It performs all registered component health checks.
//
// Returns:
//   - 200 OK: the gateway is ready to serve tiles
//   - 503 Service Unavailable: one or more components are unhealthy
//
// Example response (ready):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "engine": {"status": "ok", "duration_ms": 0.1},
//	        "charts": {"status": "ok", "duration_ms": 5.2}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "charts": {"status": "ok"},
//	        "engine": {"status": "unhealthy", "message": "no tile service built"}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		// Return 503 if not ready
		if status.Status == "degraded" || status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// VersionHandler returns an HTTP handler for the version information endpoint.
// It returns build information including version, commit, and build time.
//
// Example response:
//
//	{
//	    "version": "1.4.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-20T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// HealthCheckHandlers bundles all health check HTTP handlers.
type HealthCheckHandlers struct {
	// LivenessHandler serves the liveness probe
	LivenessHandler http.HandlerFunc

	// ReadinessHandler serves the readiness probe
	ReadinessHandler http.HandlerFunc

	// VersionHandler serves build information
	VersionHandler http.HandlerFunc
}

// CreateHandlers creates HTTP handlers for all health check endpoints.
// This is a convenience function to get all handlers at once.
func (c *Checker) CreateHandlers(version, commit, buildTime string) HealthCheckHandlers {
	return HealthCheckHandlers{
		LivenessHandler:  c.LivenessHandler(),
		ReadinessHandler: c.ReadinessHandler(),
		VersionHandler:   VersionHandler(version, commit, buildTime),
	}
}

// Register mounts the probe endpoints on mux at the configured paths,
// plus build information at /version. It is a no-op when health endpoints
// are disabled.
//
// Usage:
//
//	mux := http.NewServeMux()
//	checker := health.New(&cfg.Telemetry.Health)
//	health.Register(mux, checker, "1.4.0", "abc123", "2026-08-20")
func Register(mux *http.ServeMux, checker *Checker, version, commit, buildTime string) {
	if !checker.config.Enabled {
		return
	}

	handlers := checker.CreateHandlers(version, commit, buildTime)

	mux.HandleFunc(checker.config.LivenessPath, handlers.LivenessHandler)
	mux.HandleFunc(checker.config.ReadinessPath, handlers.ReadinessHandler)
	mux.HandleFunc("/version", handlers.VersionHandler)
}

// LivenessPath returns the configured liveness probe path.
func (c *Checker) LivenessPath() string {
	return c.config.LivenessPath
}

// ReadinessPath returns the configured readiness probe path.
func (c *Checker) ReadinessPath() string {
	return c.config.ReadinessPath
}

// Enabled reports whether health endpoints are enabled.
func (c *Checker) Enabled() bool {
	return c.config.Enabled
}
