package config

import "time"

// Config is the root configuration structure for the tilegate server.
// It contains all configuration sections for the HTTP server, chart
// configuration handling, chart synchronization, request statistics,
// and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and TLS settings.
	Server ServerConfig `yaml:"server"`

	// Charts contains chart configuration handling: where the user chart
	// configuration lives, where merged configurations are persisted, and
	// how changes are detected.
	Charts ChartsConfig `yaml:"charts"`

	// Sync contains Git-based chart distribution configuration.
	Sync SyncConfig `yaml:"sync"`

	// Stats contains per-layer request statistics configuration.
	Stats StatsConfig `yaml:"stats"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// Name is the host name reported to the embedded tile engine as
	// SERVER_NAME for bridged requests.
	// Default: "tilegate"
	Name string `yaml:"name"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS contains TLS configuration for the server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`
}

// ChartsConfig contains chart configuration handling settings.
type ChartsConfig struct {
	// ConfigPath is the path to the user chart configuration file. This is
	// the file chart authors edit; base includes are resolved relative to it.
	// Default: "charts/charts.yaml"
	ConfigPath string `yaml:"config_path"`

	// WorkDir is the directory where merged effective configurations are
	// persisted. When empty, the directory of ConfigPath is used.
	// Default: "" (directory of ConfigPath)
	WorkDir string `yaml:"work_dir"`

	// URLPrefix is the path prefix under which tiles are served. Map URLs
	// reported by the API carry this prefix, and it is stripped from bridged
	// request paths before they reach the engine.
	// Must start with "/" and must not end with "/".
	// Default: "/tiles"
	URLPrefix string `yaml:"url_prefix"`

	// Offline selects the offline variant of the chart configuration.
	// Seed-only sources are kept in offline mode and dropped otherwise.
	// Default: false
	Offline bool `yaml:"offline"`

	// Watch enables automatic rebuilds when the chart configuration file
	// changes on disk.
	// Default: true
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long to wait after the last file change before
	// triggering a rebuild. Editors and sync tools often produce bursts of
	// events for one logical change.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// RescanSchedule is a cron expression for periodic change scans. Each
	// scan rebuilds only when the configuration file's modification time
	// moved. Set to "off" to disable periodic scans.
	// Default: "@every 1m"
	RescanSchedule string `yaml:"rescan_schedule"`
}

// SyncConfig contains Git-based chart distribution configuration.
// When enabled, chart configurations are pulled from a Git repository
// into the chart directory and rebuilds pick up the synced files.
type SyncConfig struct {
	// Enabled determines if chart synchronization is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/charts.git"
	// Example: "git@github.com:company/charts.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the chart configuration files.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth SyncAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll SyncPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone SyncCloneConfig `yaml:"clone"`
}

// SyncAuthConfig configures Git authentication.
type SyncAuthConfig struct {
	// Type: "token", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication (supports env vars).
	// Example: "${GITHUB_TOKEN}"
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Example: "/home/user/.ssh/id_rsa"
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys (supports env vars).
	// Optional, leave empty if key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// SyncPollConfig configures change detection.
type SyncPollConfig struct {
	// Enabled determines if polling is active.
	// When false, charts are synced once at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls (e.g., "30s", "1m", "5m").
	// Default: 1m
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// SyncCloneConfig configures repository cloning.
type SyncCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Set to 1 for fastest cloning of large repositories.
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local repository before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// StatsConfig contains per-layer request statistics configuration.
type StatsConfig struct {
	// Enabled controls whether request statistics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for statistics.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite StatsSQLiteConfig `yaml:"sqlite"`
}

// StatsSQLiteConfig contains SQLite-specific statistics configuration.
type StatsSQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/stats.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// CheckpointInterval is how often the write-ahead log is checkpointed.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactCredentials masks credential material in log output: userinfo
	// in URLs, token and key fields.
	// Default: true
	RedactCredentials bool `yaml:"redact_credentials"`

	// RedactPatterns contains additional redaction patterns applied to log
	// output. Each pattern has a name, regex, and replacement string.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`

	// DemoteChannels lists engine log channels whose info-level records are
	// demoted to debug. The engine's configuration and upstream request
	// channels are chatty during rebuilds. An absent key keeps the built-in
	// list; an explicit empty list disables demotion.
	// Default: ["engine.config", "engine.source.request"]
	DemoteChannels []string `yaml:"demote_channels"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "tilegate"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration
	// (seconds). When empty, the Prometheus default buckets are used.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "tilegate"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// NewConfig returns a Config with boolean defaults seeded. Fields whose
// default is true must be set before YAML decoding so an explicit false in
// the file survives; everything else is filled in by ApplyDefaults.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Charts.Watch = true
	cfg.Sync.Poll.Enabled = true
	cfg.Stats.Enabled = true
	cfg.Telemetry.Logging.RedactCredentials = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
	cfg.Telemetry.Health.Enabled = true
	return cfg
}
