// Package server provides the HTTP server hosting tile traffic and the
// management API.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/portolan-hq/tilegate/pkg/bridge"
	"github.com/portolan-hq/tilegate/pkg/config"
	"github.com/portolan-hq/tilegate/pkg/server/handlers"
	"github.com/portolan-hq/tilegate/pkg/server/middleware"
	"github.com/portolan-hq/tilegate/pkg/stats"
	"github.com/portolan-hq/tilegate/pkg/telemetry/health"
	"github.com/portolan-hq/tilegate/pkg/telemetry/metrics"
	"github.com/portolan-hq/tilegate/pkg/telemetry/tracing"
)

// Server is the HTTP server for tile traffic and the management API.
type Server struct {
	config       *config.Config
	host         handlers.EngineHost
	bridge       *bridge.Bridge
	stats        stats.Store
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	health       *health.Checker
	version      string
	commit       string
	buildTime    string
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options configure NewServer. Config, Host and Bridge are required;
// the remaining dependencies are optional and their routes or
// instrumentation are omitted when nil.
type Options struct {
	// Config is the full application configuration.
	Config *config.Config

	// Host holds the embedded tile engine.
	Host handlers.EngineHost

	// Bridge adapts inbound requests for the engine.
	Bridge *bridge.Bridge

	// Stats receives per layer request accounting and backs /api/stats.
	Stats stats.Store

	// Metrics receives request metrics and serves the metrics endpoint.
	Metrics *metrics.Collector

	// Tracer records per request spans.
	Tracer *tracing.Tracer

	// Health serves the liveness and readiness probes.
	Health *health.Checker

	// Version, Commit and BuildTime identify the build on /version.
	Version   string
	Commit    string
	BuildTime string
}

// NewServer creates a new tile server.
func NewServer(opts Options) *Server {
	return &Server{
		config:       opts.Config,
		host:         opts.Host,
		bridge:       opts.Bridge,
		stats:        opts.Stats,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		health:       opts.Health,
		version:      opts.Version,
		commit:       opts.Commit,
		buildTime:    opts.BuildTime,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Server.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting tile server",
			"address", s.config.Server.ListenAddress,
			"tile_prefix", s.config.Charts.URLPrefix,
			"tls_enabled", s.config.Server.TLS.Enabled,
		)

		var err error
		if s.config.Server.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.config.Server.TLS.CertFile,
				s.config.Server.TLS.KeyFile,
			)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop requests a graceful shutdown from another goroutine. Start
// returns once the server has drained.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("tile server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	tileHandler := handlers.NewTileHandler(handlers.TileHandlerConfig{
		Host:    s.host,
		Bridge:  s.bridge,
		Stats:   s.stats,
		Metrics: s.metrics,
		Tracer:  s.tracer,
		Prefix:  s.config.Charts.URLPrefix,
	})

	mux.Handle(s.config.Charts.URLPrefix+"/", tileHandler)
	mux.Handle("/api/status", handlers.NewStatusHandler(s.host))
	mux.Handle("/api/maps", handlers.NewMapsHandler(s.host))
	mux.Handle("/api/mappings", handlers.NewMappingsHandler(s.host))
	if s.stats != nil {
		mux.Handle("/api/stats", handlers.NewStatsHandler(s.stats))
	}

	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		path := s.config.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.metrics.Handler())
	}

	if s.health != nil {
		health.Register(mux, s.health, s.version, s.commit, s.buildTime)
	}

	// Request IDs are assigned before logging so log lines carry them;
	// recovery sits outermost so panics anywhere in the chain are caught.
	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// configureTLS configures TLS settings.
func (s *Server) configureTLS() (*tls.Config, error) {
	cfg := s.config.Server.TLS

	if cfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(cfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", cfg.CertFile)
	}
	if _, err := os.Stat(cfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", cfg.KeyFile)
	}

	minVersion := uint16(tls.VersionTLS13)
	switch cfg.MinVersion {
	case "", "1.3":
	case "1.2":
		minVersion = tls.VersionTLS12
	default:
		return nil, fmt.Errorf("unsupported TLS min version: %s", cfg.MinVersion)
	}

	return &tls.Config{MinVersion: minVersion}, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health performs a health check on the server.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	if !s.host.Status().Running {
		return fmt.Errorf("no tile application available")
	}

	return nil
}
