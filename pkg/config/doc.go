// Package config provides configuration management for the tilegate server.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("tilegate.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("tilegate.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TILEGATE_SECTION_FIELD.
// For example:
//
//   - TILEGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - TILEGATE_CHARTS_CONFIG_PATH overrides charts.config_path
//   - TILEGATE_SYNC_AUTH_TOKEN overrides sync.auth.token
//   - TILEGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("tilegate.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., chart configuration path, sync repository)
//   - Range validation (e.g., sample ratio within 0.0 to 1.0)
//   - Format validation (e.g., cron expression for the rescan schedule)
//   - Logical validation (e.g., TLS cert and key required when TLS is enabled)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - charts.url_prefix: URL prefix must start with /
//	  - sync.auth.token: token is required when auth type is 'token'
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	charts:
//	  config_path: "charts/charts.yaml"
//	  url_prefix: "/tiles"
//
//	stats:
//	  backend: "memory"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
