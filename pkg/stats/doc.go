// Package stats records per-layer tile request counts.
//
// # Overview
//
// The stats package defines the interface for recording which chart layers
// are actually requested and provides multiple implementations:
//
//   - Memory: Fast in-memory counters (default, no persistence)
//   - SQLite: Lightweight file-based persistence surviving restarts
//
// Counts feed the /api/stats endpoint so chart authors can see which layers
// their users load and which are dead weight.
//
// # Usage
//
//	store, err := stats.New(&cfg.Stats)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	// Record a served tile
//	err = store.Record(ctx, "seamark")
//
//	// Report totals
//	counts, err := store.Totals(ctx)
//
// # Thread Safety
//
// All stores are thread-safe and support concurrent access from multiple
// goroutines. Locking is handled internally by each store.
package stats
