package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	// SQLite driver for MBTiles access.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite serves tiles from an MBTiles file. The database is opened read-only;
// seeding happens out of band.
type SQLite struct {
	db       *sql.DB
	path     string
	tileStmt *sql.Stmt

	meta map[string]string
}

// NewSQLite opens an MBTiles file.
func NewSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mbtiles %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening mbtiles %q: %w", path, err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.loadMetadata(); err != nil {
		db.Close()
		return nil, err
	}

	stmt, err := db.Prepare(`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing tile query for %q: %w", path, err)
	}
	s.tileStmt = stmt
	return s, nil
}

// Tile returns the tile at slippy coordinates. MBTiles rows count from the
// south, so the row is flipped before the lookup.
func (s *SQLite) Tile(ctx context.Context, z, x, y int) ([]byte, error) {
	row := (1 << uint(z)) - 1 - y
	var data []byte
	err := s.tileStmt.QueryRowContext(ctx, z, x, row).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %d/%d/%d from %q: %w", z, x, y, s.path, err)
	}
	return data, nil
}

// Bounds returns the extent recorded in the metadata table.
func (s *SQLite) Bounds() ([4]float64, bool) {
	raw, ok := s.meta["bounds"]
	if !ok {
		return [4]float64{}, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return [4]float64{}, false
	}
	var bounds [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [4]float64{}, false
		}
		bounds[i] = v
	}
	return bounds, true
}

// ZoomRange returns the zoom interval recorded in the metadata table.
func (s *SQLite) ZoomRange() (int, int, bool) {
	minRaw, okMin := s.meta["minzoom"]
	maxRaw, okMax := s.meta["maxzoom"]
	if !okMin || !okMax {
		return 0, 0, false
	}
	minZoom, errMin := strconv.Atoi(strings.TrimSpace(minRaw))
	maxZoom, errMax := strconv.Atoi(strings.TrimSpace(maxRaw))
	if errMin != nil || errMax != nil {
		return 0, 0, false
	}
	return minZoom, maxZoom, true
}

// Format returns the tile format recorded in the metadata table, if any.
func (s *SQLite) Format() (string, bool) {
	f, ok := s.meta["format"]
	return f, ok
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s.tileStmt != nil {
		s.tileStmt.Close()
	}
	return s.db.Close()
}

func (s *SQLite) loadMetadata() error {
	s.meta = make(map[string]string)
	rows, err := s.db.Query(`SELECT name, value FROM metadata`)
	if err != nil {
		// MBTiles without a metadata table still serve tiles.
		return nil
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("reading metadata from %q: %w", s.path, err)
		}
		s.meta[name] = value
	}
	return rows.Err()
}
