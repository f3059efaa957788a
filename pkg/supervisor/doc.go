// Package supervisor owns the lifecycle of the embedded tile
// application.
//
// A rebuild merges the chart configuration's base chain, persists the
// effective configuration for the requested mode and constructs a fresh
// application before swapping it in; requests racing a rebuild see
// either the old or the new application in its entirety, never an
// intermediate state. Build failures leave the supervisor without an
// application, the failure text queryable through Status, and the
// decision to retry with the caller.
//
// # Rebuild triggers
//
// Rebuild is called directly by the control API, by Watcher when a
// configuration file changes and by Scheduler on a cron interval. All
// three paths funnel into the same serialized rebuild; changedOnly
// lets the periodic paths skip cheaply when the file's timestamp is
// unchanged:
//
//	sup, err := supervisor.New(supervisor.Config{
//		ConfigPath: "/charts/avnav.yaml",
//		EngineLog:  bridge,
//	})
//	if err != nil {
//		return err
//	}
//	if _, err := sup.Rebuild(false, false); err != nil {
//		log.Error("initial build failed", "error", err)
//	}
//
// # Introspection
//
// Status reports {running, status, lastError}; Maps lists the servable
// layer and grid pairs with best effort coverage; Mappings exposes the
// layer to cache snapshot captured at the last successful build.
package supervisor
