// Package cache provides the tile storage backends the engine serves from.
//
// A backend is a read-only view of pre-seeded tile data. Three backends are
// supported:
//
//   - SQLite: MBTiles files (the sqlite cache type), opened read-only
//   - Files: a z/x/y directory tree on disk
//   - Redis: tiles stored under a key prefix, for shared cache setups
//
// Backends implement the Cache interface. A missing tile is reported with
// ErrTileNotFound so callers can distinguish an empty slot from a failing
// backend.
package cache
