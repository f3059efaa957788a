package cache

import (
	"context"
	"errors"
)

// ErrTileNotFound reports a tile that is absent from a backend. Backends
// return it verbatim so callers can fall through to the next cache in a
// layer's chain.
var ErrTileNotFound = errors.New("tile not found")

// Cache is a read-only tile store.
//
// Tile coordinates use the slippy-map addressing scheme (z/x/y with the
// origin in the north west); backends that store rows bottom-up translate
// internally.
type Cache interface {
	// Tile returns the stored tile bytes, or ErrTileNotFound.
	Tile(ctx context.Context, z, x, y int) ([]byte, error)

	// Close releases backend resources.
	Close() error
}

// Metadata is implemented by backends that carry descriptive data alongside
// the tiles, like MBTiles metadata tables.
type Metadata interface {
	// Bounds returns the data extent as [minlon, minlat, maxlon, maxlat].
	Bounds() ([4]float64, bool)

	// ZoomRange returns the stored zoom interval.
	ZoomRange() (min, max int, ok bool)
}
