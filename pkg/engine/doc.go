// Package engine serves map tiles from the caches declared in an
// effective chart configuration.
//
// The engine is deliberately small: it opens the configured tile stores
// (sqlite/mbtiles databases, file trees, redis), binds them to layers
// and answers tile requests straight from storage. It never contacts
// upstream sources; those entries are validated and left to seeding
// tools.
//
// # Building
//
// New reads the effective configuration, validates every reference and
// opens every store up front. A configuration that names an unknown
// grid, an unknown cache type or an unreadable store fails the build
// with a *BuildError, so a successfully constructed engine is fully
// servable:
//
//	app, err := engine.New("/charts/work/avnav.yaml", engine.Options{
//		Logger: sink,
//	})
//	if err != nil {
//		var be *engine.BuildError
//		if errors.As(err, &be) {
//			// configuration is at fault, report and keep the old app
//		}
//		return err
//	}
//	defer app.Close()
//
// # Serving
//
// Invoke answers one call described by CGI style environment metadata.
// Tile paths follow /{layer}/{grid}/{z}/{x}/{y}.{ext} with slippy map
// row numbering; / and /capabilities.json enumerate the available tile
// sets. A layer with several caches serves the first hit in source
// order.
//
// # Logging
//
// The engine reports through the Logger given at construction, tagged
// with a channel per subsystem. Hosts that find engine.config and
// engine.source.request too chatty demote those channels in their sink.
package engine
