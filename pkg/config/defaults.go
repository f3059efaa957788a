package config

import (
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultServerName      = "tilegate"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultTLSMinVersion   = "1.3"

	// Charts defaults
	DefaultChartConfigPath = "charts/charts.yaml"
	DefaultURLPrefix       = "/tiles"
	DefaultWatchDebounce   = 500 * time.Millisecond
	DefaultRescanSchedule  = "@every 1m"

	// RescanDisabled turns periodic change scans off when used as the
	// rescan schedule.
	RescanDisabled = "off"

	// Sync defaults
	DefaultSyncBranch       = "main"
	DefaultSyncAuthType     = "none"
	DefaultSyncPollInterval = time.Minute
	DefaultSyncPollTimeout  = 30 * time.Second
	DefaultSyncCloneDepth   = 1

	// Stats defaults
	DefaultStatsBackend            = "memory"
	DefaultStatsSQLitePath         = "data/stats.db"
	DefaultStatsBusyTimeout        = 5 * time.Second
	DefaultStatsCheckpointInterval = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "tilegate"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "tilegate"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. Boolean fields whose default is true
// are seeded by NewConfig before decoding and are left untouched here.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}

	// Charts defaults
	if cfg.Charts.ConfigPath == "" {
		cfg.Charts.ConfigPath = DefaultChartConfigPath
	}
	if cfg.Charts.WorkDir == "" {
		cfg.Charts.WorkDir = filepath.Dir(cfg.Charts.ConfigPath)
	}
	if cfg.Charts.URLPrefix == "" {
		cfg.Charts.URLPrefix = DefaultURLPrefix
	}
	if cfg.Charts.WatchDebounce == 0 {
		cfg.Charts.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.Charts.RescanSchedule == "" {
		cfg.Charts.RescanSchedule = DefaultRescanSchedule
	}

	// Sync defaults
	if cfg.Sync.Branch == "" {
		cfg.Sync.Branch = DefaultSyncBranch
	}
	if cfg.Sync.Auth.Type == "" {
		cfg.Sync.Auth.Type = DefaultSyncAuthType
	}
	if cfg.Sync.Poll.Interval == 0 {
		cfg.Sync.Poll.Interval = DefaultSyncPollInterval
	}
	if cfg.Sync.Poll.Timeout == 0 {
		cfg.Sync.Poll.Timeout = DefaultSyncPollTimeout
	}
	if cfg.Sync.Clone.Depth == 0 {
		cfg.Sync.Clone.Depth = DefaultSyncCloneDepth
	}

	// Stats defaults
	if cfg.Stats.Backend == "" {
		cfg.Stats.Backend = DefaultStatsBackend
	}
	if cfg.Stats.SQLite.Path == "" {
		cfg.Stats.SQLite.Path = DefaultStatsSQLitePath
	}
	if cfg.Stats.SQLite.BusyTimeout == 0 {
		cfg.Stats.SQLite.BusyTimeout = DefaultStatsBusyTimeout
	}
	if cfg.Stats.SQLite.CheckpointInterval == 0 {
		cfg.Stats.SQLite.CheckpointInterval = DefaultStatsCheckpointInterval
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
