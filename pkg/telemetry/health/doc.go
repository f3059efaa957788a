// Package health provides liveness and readiness probes for the tile
// gateway.
//
// # Overview
//
// The health package implements probe endpoints for container
// orchestration and supervision systems, along with a version information
// endpoint. Components register check functions; the readiness probe runs
// them all concurrently and aggregates the results.
//
// # Endpoints
//
// Paths come from config.HealthConfig; the defaults are:
//
//   - /healthz: liveness probe, indicates the process is running
//   - /readyz: readiness probe, indicates the gateway can serve tiles
//   - /version: build information (version, commit, build time)
//
// # Usage
//
//	checker := health.New(&cfg.Telemetry.Health)
//
//	checker.RegisterCheck("engine", func(ctx context.Context) error {
//	    if !sup.Status().Running {
//	        return errors.New("no tile service built")
//	    }
//	    return nil
//	})
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, version, commit, buildTime)
//
// # Liveness vs Readiness
//
// The liveness probe only verifies the process is alive; it never runs
// component checks and always answers quickly. The readiness probe runs
// every registered check with a per-check timeout and returns 503 when
// any component is unhealthy, so load balancers stop routing traffic
// while the gateway rebuilds or has lost a dependency.
//
// # Component Checks
//
// Typical checks registered by the gateway:
//
//   - engine: a tile service has been built and is serving
//   - charts: the merged chart configuration is present on disk
//   - stats: the request statistics store answers a ping
//   - sync: the chart repository is reachable (disabled when sync is off)
//
// A check that returns ErrDisabled shows up as "disabled" in the
// readiness response without degrading the overall status:
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "engine": {"status": "ok", "duration_ms": 0.2},
//	        "charts": {"status": "ok", "duration_ms": 1.1},
//	        "sync": {"status": "disabled"}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
package health
