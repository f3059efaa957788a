package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Files serves tiles from a z/x/y directory tree.
type Files struct {
	root string
	ext  string
}

// NewFiles opens a directory cache. ext is the tile file extension without
// the dot, like "png".
func NewFiles(root, ext string) (*Files, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening tile directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tile cache path %q is not a directory", root)
	}
	return &Files{root: root, ext: ext}, nil
}

// Tile reads <root>/<z>/<x>/<y>.<ext>.
func (f *Files) Tile(_ context.Context, z, x, y int) ([]byte, error) {
	path := filepath.Join(f.root,
		strconv.Itoa(z),
		strconv.Itoa(x),
		strconv.Itoa(y)+"."+f.ext)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %d/%d/%d: %w", z, x, y, err)
	}
	return data, nil
}

// Close is a no-op for directory caches.
func (f *Files) Close() error {
	return nil
}
