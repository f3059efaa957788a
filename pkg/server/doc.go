// Package server provides the HTTP server hosting tile traffic and the
// management API.
//
// This package ties together the bridged tile handler, the management API
// handlers and the middleware chain, and provides server lifecycle
// management including start, shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Configures TLS termination
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "github.com/portolan-hq/tilegate/pkg/config"
//	    "github.com/portolan-hq/tilegate/pkg/server"
//	    "github.com/portolan-hq/tilegate/pkg/supervisor"
//	)
//
//	cfg, err := config.Load("tilegate.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sup := supervisor.New(supervisor.Config{...})
//	defer sup.Close()
//
//	srv := server.NewServer(server.Options{
//	    Config: cfg,
//	    Host:   sup,
//	    Bridge: br,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving SIGTERM
// or SIGINT. Shutdown can also be triggered programmatically with Stop or
// Shutdown. The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET {url_prefix}/... - Bridged tile traffic (tiles, capabilities, demo)
//   - GET /api/status - Engine lifecycle state
//   - GET /api/maps - Servable map list with coverage
//   - GET /api/mappings - Layer to cache mapping
//   - GET /api/stats - Per layer request counts
//   - GET /metrics - Prometheus metrics (when enabled)
//   - GET /healthz, /readyz, /version - Probes (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost to innermost):
//  1. Recovery: Recovers from panics and returns 500 error
//  2. RequestID: Assigns the unique request ID
//  3. Logging: Logs request/response details, tagged with the request ID
//  4. TraceContext: Extracts W3C trace context from inbound headers
//
// # TLS Support
//
// The server supports TLS with configurable certificates:
//
//	server:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//	    min_version: "1.3"
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
