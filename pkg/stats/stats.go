package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/portolan-hq/tilegate/pkg/config"
)

// Store defines the interface for request statistics persistence.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Record counts one served request for a layer.
	Record(ctx context.Context, layer string) error

	// Totals returns the accumulated counts, most requested layer first.
	// Returns an empty slice when nothing has been recorded.
	Totals(ctx context.Context) ([]LayerCount, error)

	// Close releases any resources held by the store.
	// The store should not be used after calling Close.
	Close() error
}

// LayerCount is the accumulated request count for one layer.
type LayerCount struct {
	// Layer is the chart layer name.
	Layer string `json:"layer"`

	// Count is the total number of recorded requests.
	Count int64 `json:"count"`

	// LastRequest is when the layer was last requested.
	LastRequest time.Time `json:"lastRequest"`
}

// New creates a store from configuration. A disabled configuration yields
// a store that discards records and reports no totals.
func New(cfg *config.StatsConfig) (Store, error) {
	if cfg == nil || !cfg.Enabled {
		return &noopStore{}, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
			Path:               cfg.SQLite.Path,
			BusyTimeout:        cfg.SQLite.BusyTimeout,
			CheckpointInterval: cfg.SQLite.CheckpointInterval,
		})
	default:
		return nil, fmt.Errorf("unknown stats backend: %s", cfg.Backend)
	}
}

// noopStore is used when statistics are disabled.
type noopStore struct{}

func (n *noopStore) Record(ctx context.Context, layer string) error { return nil }

func (n *noopStore) Totals(ctx context.Context) ([]LayerCount, error) {
	return []LayerCount{}, nil
}

func (n *noopStore) Close() error { return nil }
