// TileGate serves nautical chart tiles through an embedded tile engine.
//
// It merges layered chart configurations into one effective document,
// builds the embedded tile application from it, and provides:
//   - Raster tiles under a configurable URL prefix
//   - A JSON API for engine status, map listings, and request statistics
//   - Prometheus metrics, health probes, and OpenTelemetry tracing
//   - Git-synced chart configurations with automatic rescans
//
// Usage:
//
//	# Start server with default configuration
//	tilegate run
//
//	# Start with custom configuration file
//	tilegate run --config /etc/tilegate/config.yaml
//
//	# Validate chart configurations before committing them
//	tilegate validate charts/overlay.yaml
//
//	# Show version information
//	tilegate version
//
// For complete documentation, see: https://github.com/portolan-hq/tilegate
package main

func main() {
	Execute()
}
