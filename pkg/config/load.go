package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TILEGATE_SECTION_FIELD (e.g., TILEGATE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format TILEGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("TILEGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("TILEGATE_SERVER_NAME"); val != "" {
		cfg.Server.Name = val
	}
	if val := os.Getenv("TILEGATE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.TLS.Enabled = b
		}
	}
	if val := os.Getenv("TILEGATE_SERVER_TLS_CERT_FILE"); val != "" {
		cfg.Server.TLS.CertFile = val
	}
	if val := os.Getenv("TILEGATE_SERVER_TLS_KEY_FILE"); val != "" {
		cfg.Server.TLS.KeyFile = val
	}

	// Charts overrides
	if val := os.Getenv("TILEGATE_CHARTS_CONFIG_PATH"); val != "" {
		cfg.Charts.ConfigPath = val
	}
	if val := os.Getenv("TILEGATE_CHARTS_WORK_DIR"); val != "" {
		cfg.Charts.WorkDir = val
	}
	if val := os.Getenv("TILEGATE_CHARTS_URL_PREFIX"); val != "" {
		cfg.Charts.URLPrefix = val
	}
	if val := os.Getenv("TILEGATE_CHARTS_OFFLINE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Charts.Offline = b
		}
	}
	if val := os.Getenv("TILEGATE_CHARTS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Charts.Watch = b
		}
	}
	if val := os.Getenv("TILEGATE_CHARTS_RESCAN_SCHEDULE"); val != "" {
		cfg.Charts.RescanSchedule = val
	}

	// Sync overrides
	if val := os.Getenv("TILEGATE_SYNC_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sync.Enabled = b
		}
	}
	if val := os.Getenv("TILEGATE_SYNC_REPOSITORY"); val != "" {
		cfg.Sync.Repository = val
	}
	if val := os.Getenv("TILEGATE_SYNC_BRANCH"); val != "" {
		cfg.Sync.Branch = val
	}
	if val := os.Getenv("TILEGATE_SYNC_PATH"); val != "" {
		cfg.Sync.Path = val
	}
	if val := os.Getenv("TILEGATE_SYNC_AUTH_TYPE"); val != "" {
		cfg.Sync.Auth.Type = val
	}
	if val := os.Getenv("TILEGATE_SYNC_AUTH_TOKEN"); val != "" {
		cfg.Sync.Auth.Token = val
	}
	if val := os.Getenv("TILEGATE_SYNC_AUTH_SSH_KEY_PATH"); val != "" {
		cfg.Sync.Auth.SSHKeyPath = val
	}
	if val := os.Getenv("TILEGATE_SYNC_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sync.Poll.Interval = d
		}
	}

	// Stats overrides
	if val := os.Getenv("TILEGATE_STATS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Stats.Enabled = b
		}
	}
	if val := os.Getenv("TILEGATE_STATS_BACKEND"); val != "" {
		cfg.Stats.Backend = val
	}
	if val := os.Getenv("TILEGATE_STATS_SQLITE_PATH"); val != "" {
		cfg.Stats.SQLite.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("TILEGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("TILEGATE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
