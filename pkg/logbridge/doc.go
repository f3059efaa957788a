// Package logbridge forwards embedded engine log records into the
// host's structured logger.
//
// The engine reports through its own Logger contract with printf style
// records and free form channels. Bridge adapts those records to a
// leveled sink, demotes designated noisy channels from info to debug
// and captures fatal records so the supervisor can attach the failure
// text to its status:
//
//	bridge := logbridge.New(logbridge.Options{Sink: log})
//	app, err := engine.New(path, engine.Options{Logger: bridge})
//	if err != nil {
//		if msg, ok := bridge.FatalError(true); ok {
//			// surface msg alongside err
//		}
//	}
//
// The sink is injected; the bridge never touches process global logging
// state.
package logbridge
