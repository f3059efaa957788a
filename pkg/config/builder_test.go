package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := NewConfig()
	ApplyDefaults(cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithChartConfigPath sets the chart configuration path.
func (b *ConfigBuilder) WithChartConfigPath(path string) *ConfigBuilder {
	b.cfg.Charts.ConfigPath = path
	b.cfg.Charts.WorkDir = ""
	ApplyDefaults(b.cfg)
	return b
}

// WithURLPrefix sets the tile URL prefix.
func (b *ConfigBuilder) WithURLPrefix(prefix string) *ConfigBuilder {
	b.cfg.Charts.URLPrefix = prefix
	return b
}

// WithWatch sets whether the chart configuration file is watched.
func (b *ConfigBuilder) WithWatch(enabled bool) *ConfigBuilder {
	b.cfg.Charts.Watch = enabled
	return b
}

// WithRescanSchedule sets the periodic rescan schedule.
func (b *ConfigBuilder) WithRescanSchedule(spec string) *ConfigBuilder {
	b.cfg.Charts.RescanSchedule = spec
	return b
}

// WithOffline selects the offline chart configuration variant.
func (b *ConfigBuilder) WithOffline(offline bool) *ConfigBuilder {
	b.cfg.Charts.Offline = offline
	return b
}

// WithSyncRepository enables chart synchronization from the given repository.
func (b *ConfigBuilder) WithSyncRepository(repo string) *ConfigBuilder {
	b.cfg.Sync.Enabled = true
	b.cfg.Sync.Repository = repo
	if b.cfg.Sync.Branch == "" {
		b.cfg.Sync.Branch = DefaultSyncBranch
	}
	return b
}

// WithSyncToken sets token authentication for chart synchronization.
func (b *ConfigBuilder) WithSyncToken(token string) *ConfigBuilder {
	b.cfg.Sync.Auth.Type = "token"
	b.cfg.Sync.Auth.Token = token
	return b
}

// WithStatsBackend sets the statistics backend.
func (b *ConfigBuilder) WithStatsBackend(backend string) *ConfigBuilder {
	b.cfg.Stats.Enabled = true
	b.cfg.Stats.Backend = backend
	return b
}

// WithStatsSQLitePath sets the SQLite database path for statistics.
func (b *ConfigBuilder) WithStatsSQLitePath(path string) *ConfigBuilder {
	b.cfg.Stats.Backend = "sqlite"
	b.cfg.Stats.SQLite.Path = path
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Server.TLS.Enabled = true
	b.cfg.Server.TLS.CertFile = certFile
	b.cfg.Server.TLS.KeyFile = keyFile
	return b
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func (b *ConfigBuilder) WithShutdownTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ShutdownTimeout = d
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
