package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory counters.
// This is the default store and provides fast access with no persistence.
// All counts are lost when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryStore struct {
	// counts maps layer name to its accumulated entry.
	counts map[string]*layerEntry

	// mu protects access to the counts map.
	mu sync.RWMutex

	// now is the clock, replaceable in tests.
	now func() time.Time
}

type layerEntry struct {
	count       int64
	lastRequest time.Time
}

// NewMemoryStore creates a new in-memory statistics store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts: make(map[string]*layerEntry),
		now:    time.Now,
	}
}

// Record counts one served request for a layer.
func (m *MemoryStore) Record(ctx context.Context, layer string) error {
	if layer == "" {
		return fmt.Errorf("layer cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.counts[layer]
	if !ok {
		entry = &layerEntry{}
		m.counts[layer] = entry
	}
	entry.count++
	entry.lastRequest = m.now()

	return nil
}

// Totals returns the accumulated counts, most requested layer first.
// Layers with equal counts are ordered by name.
func (m *MemoryStore) Totals(ctx context.Context) ([]LayerCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make([]LayerCount, 0, len(m.counts))
	for layer, entry := range m.counts {
		totals = append(totals, LayerCount{
			Layer:       layer,
			Count:       entry.count,
			LastRequest: entry.lastRequest,
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Count != totals[j].Count {
			return totals[i].Count > totals[j].Count
		}
		return totals[i].Layer < totals[j].Layer
	})

	return totals, nil
}

// Close releases resources. The memory store holds none.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the number of distinct layers recorded.
// This is useful for monitoring and testing.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.counts)
}
