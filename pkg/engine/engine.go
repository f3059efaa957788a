package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/portolan-hq/tilegate/pkg/engine/cache"
)

// Header is one response header. Values are already rendered as text.
type Header struct {
	Name  string
	Value string
}

// Responder receives the response to one call. Start must be called
// exactly once; the returned writer accepts the body.
type Responder interface {
	Start(status string, headers []Header) (io.Writer, error)
}

// Call is one request handed to an application. Env carries the CGI
// style request metadata, Body the request body and ErrLog the sink for
// request scoped diagnostics.
type Call struct {
	Env       map[string]string
	Body      io.Reader
	Responder Responder
	ErrLog    io.Writer
}

// Application is the serving contract hosts program against.
type Application interface {
	// Invoke serves one request.
	Invoke(ctx context.Context, call *Call) error

	// TileSets enumerates every servable layer and grid pairing.
	TileSets() []TileSet

	// Extent reports the geographic coverage of one tile set.
	Extent(layer, grid string) (Extent, error)

	// Close releases the tile stores.
	Close() error
}

// Options configure New.
type Options struct {
	// Logger receives engine log records. Default: discard.
	Logger Logger

	// BaseDir anchors relative store paths from the configuration.
	// Default: the configuration file's directory.
	BaseDir string
}

type setKey struct {
	layer string
	grid  string
}

type boundCache struct {
	name  string
	store cache.Cache
}

type servingSet struct {
	layer  string
	grid   string
	format string
	caches []boundCache
}

// Engine serves tiles straight from the caches an effective chart
// configuration declares. It fetches nothing from upstreams; sources are
// validated and otherwise left to seeding tools.
type Engine struct {
	path    string
	logger  Logger
	grids   map[string]Grid
	sets    []TileSet
	serving map[setKey]*servingSet
	stores  map[string]cache.Cache
}

var _ Application = (*Engine)(nil)

// New builds an engine from the effective configuration at path. Any
// reference violation or unusable tile store yields a *BuildError.
func New(path string, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &BuildError{Path: path, Message: "read configuration", Cause: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &BuildError{Path: path, Message: "parse configuration", Cause: err}
	}

	e := &Engine{
		path:    path,
		logger:  logger,
		serving: make(map[setKey]*servingSet),
		stores:  make(map[string]cache.Cache),
	}

	e.grids = builtinGrids()
	for name, gc := range cfg.Grids {
		grid, err := buildGrid(name, gc)
		if err != nil {
			return nil, &BuildError{Path: path, Message: err.Error()}
		}
		e.grids[name] = grid
	}

	if err := e.openStores(baseDir, &cfg); err != nil {
		e.closeStores()
		return nil, err
	}
	if err := e.bindLayers(&cfg); err != nil {
		e.closeStores()
		return nil, err
	}
	e.reportServices(&cfg)

	e.logf(ChannelConfig, LevelInfo, "configured %d layers into %d tile sets", len(cfg.Layers), len(e.sets))
	return e, nil
}

// buildGrid validates one custom grid declaration.
func buildGrid(name string, gc GridConfig) (Grid, error) {
	grid := Grid{Name: name, SRS: gc.SRS, Levels: gc.Levels}
	if grid.SRS == "" {
		grid.SRS = "EPSG:3857"
	}
	if grid.Levels <= 0 {
		grid.Levels = defaultLevels
	}
	switch len(gc.BBox) {
	case 0:
		switch grid.SRS {
		case "EPSG:4326", "CRS:84":
			grid.BBox = [4]float64{-180, -90, 180, 90}
		default:
			grid.BBox = [4]float64{-webMercatorMax, -webMercatorMax, webMercatorMax, webMercatorMax}
		}
	case 4:
		copy(grid.BBox[:], gc.BBox)
	default:
		return Grid{}, fmt.Errorf("grid %q: bbox needs 4 values, got %d", name, len(gc.BBox))
	}
	return grid, nil
}

// openStores opens one tile store per cache entry and validates grid
// references.
func (e *Engine) openStores(baseDir string, cfg *Config) error {
	for name, cc := range cfg.Caches {
		for _, g := range cc.Grids {
			if _, ok := e.grids[g]; !ok {
				return &BuildError{Path: e.path, Message: fmt.Sprintf("cache %q references unknown grid %q", name, g)}
			}
		}
		store, err := e.openStore(baseDir, name, cc)
		if err != nil {
			return err
		}
		e.stores[name] = store
	}
	return nil
}

func (e *Engine) openStore(baseDir, name string, cc CacheConfig) (cache.Cache, error) {
	switch cc.Cache.Type {
	case "sqlite", "mbtiles":
		if cc.Cache.Filename == "" {
			return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("cache %q: %s store needs a filename", name, cc.Cache.Type)}
		}
		store, err := cache.NewSQLite(resolvePath(baseDir, cc.Cache.Filename))
		if err != nil {
			return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("open cache %q", name), Cause: err}
		}
		return store, nil
	case "files", "file":
		if cc.Cache.Directory == "" {
			return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("cache %q: %s store needs a directory", name, cc.Cache.Type)}
		}
		ext := formatSubtype(cc.Format)
		if ext == "" {
			ext = "png"
		}
		store, err := cache.NewFiles(resolvePath(baseDir, cc.Cache.Directory), ext)
		if err != nil {
			return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("open cache %q", name), Cause: err}
		}
		return store, nil
	case "redis":
		store, err := cache.NewRedis(cache.RedisOptions{
			Host:   cc.Cache.Host,
			Port:   cc.Cache.Port,
			DB:     cc.Cache.DB,
			Prefix: cc.Cache.Prefix,
		})
		if err != nil {
			return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("open cache %q", name), Cause: err}
		}
		return store, nil
	case "":
		return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("cache %q: missing store type", name)}
	default:
		return nil, &BuildError{Path: e.path, Message: fmt.Sprintf("cache %q: unknown store type %q", name, cc.Cache.Type)}
	}
}

// bindLayers resolves layer sources into serving sets.
func (e *Engine) bindLayers(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Layers))
	for _, layer := range cfg.Layers {
		if layer.Name == "" {
			return &BuildError{Path: e.path, Message: "layer without a name"}
		}
		if seen[layer.Name] {
			return &BuildError{Path: e.path, Message: fmt.Sprintf("duplicate layer %q", layer.Name)}
		}
		seen[layer.Name] = true

		var bound int
		for _, src := range layer.Sources {
			cc, ok := cfg.Caches[src]
			if !ok {
				if _, isSource := cfg.Sources[src]; isSource {
					e.logf(ChannelSourceRequest, LevelInfo, "layer %q source %q is an upstream source, serving reads caches only", layer.Name, src)
					continue
				}
				return &BuildError{Path: e.path, Message: fmt.Sprintf("layer %q references unknown source %q", layer.Name, src)}
			}
			e.bindCache(layer, src, cc, cfg)
			bound++
		}
		if bound == 0 {
			e.logf(ChannelConfig, LevelInfo, "layer %q has no cache sources and will not be served", layer.Name)
		}
	}
	return nil
}

// bindCache attaches one cache to the layer's serving sets, one per grid
// the cache is tiled on.
func (e *Engine) bindCache(layer Layer, name string, cc CacheConfig, cfg *Config) {
	store := e.stores[name]
	grids := cc.Grids
	if len(grids) == 0 {
		grids = []string{"GLOBAL_WEBMERCATOR"}
	}
	for _, g := range grids {
		key := setKey{layer: layer.Name, grid: g}
		set, ok := e.serving[key]
		if !ok {
			set = &servingSet{
				layer:  layer.Name,
				grid:   g,
				format: e.setFormat(cc, store, cfg),
			}
			e.serving[key] = set
			e.sets = append(e.sets, TileSet{Layer: layer.Name, Grid: g, Format: set.format})
		}
		set.caches = append(set.caches, boundCache{name: name, store: store})
	}
}

// setFormat picks the tile format for a serving set: the cache entry's
// declared format, then the store's own metadata, then the global image
// default, then png.
func (e *Engine) setFormat(cc CacheConfig, store cache.Cache, cfg *Config) string {
	if cc.Format != "" {
		return formatSubtype(cc.Format)
	}
	if mb, ok := store.(*cache.SQLite); ok {
		if f, ok := mb.Format(); ok && f != "" {
			return formatSubtype(f)
		}
	}
	if cfg.Globals.Image.Format != "" {
		return formatSubtype(cfg.Globals.Image.Format)
	}
	return "png"
}

// reportServices logs service section keys the embedded engine does not
// provide. Tile serving itself is always on.
func (e *Engine) reportServices(cfg *Config) {
	provided := map[string]bool{"tms": true, "tiles": true, "demo": true}
	for name := range cfg.Services {
		if !provided[name] {
			e.logf(ChannelConfig, LevelInfo, "service %q is not provided by the embedded engine", name)
		}
	}
}

// TileSets enumerates the servable layer and grid pairings.
func (e *Engine) TileSets() []TileSet {
	out := make([]TileSet, len(e.sets))
	copy(out, e.sets)
	return out
}

// Extent reports the coverage of one tile set in lon/lat degrees. The
// grid extent is refined by store metadata when the first sqlite store
// carries bounds or a zoom range.
func (e *Engine) Extent(layer, grid string) (Extent, error) {
	set, ok := e.serving[setKey{layer: layer, grid: grid}]
	if !ok {
		return Extent{}, fmt.Errorf("unknown tile set %s/%s", layer, grid)
	}
	g, ok := e.grids[grid]
	if !ok {
		return Extent{}, fmt.Errorf("unknown grid %q", grid)
	}

	ext := Extent{MinZoom: 0, MaxZoom: g.Levels - 1}
	bbox, bboxErr := g.LLBBox()
	if bboxErr == nil {
		ext.MinLon, ext.MinLat, ext.MaxLon, ext.MaxLat = bbox[0], bbox[1], bbox[2], bbox[3]
	}

	var haveBounds bool
	for _, bc := range set.caches {
		meta, ok := bc.store.(cache.Metadata)
		if !ok {
			continue
		}
		if b, ok := meta.Bounds(); ok && !haveBounds {
			ext.MinLon, ext.MinLat, ext.MaxLon, ext.MaxLat = b[0], b[1], b[2], b[3]
			haveBounds = true
		}
		if lo, hi, ok := meta.ZoomRange(); ok {
			ext.MinZoom, ext.MaxZoom = lo, hi
		}
		break
	}
	if bboxErr != nil && !haveBounds {
		return Extent{}, fmt.Errorf("tile set %s/%s: %w", layer, grid, bboxErr)
	}
	return ext, nil
}

// Close releases every tile store.
func (e *Engine) Close() error {
	return e.closeStores()
}

func (e *Engine) closeStores() error {
	var errs []error
	for name, store := range e.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache %q: %w", name, err))
		}
	}
	e.stores = map[string]cache.Cache{}
	return errors.Join(errs...)
}

// Invoke serves one request. Tile paths have the form
// /{layer}/{grid}/{z}/{x}/{y}.{ext}; / and /capabilities.json list the
// tile sets.
func (e *Engine) Invoke(ctx context.Context, call *Call) error {
	method := call.Env["REQUEST_METHOD"]
	if method == "" {
		method = "GET"
	}
	path := call.Env["PATH_INFO"]
	if path == "" {
		path = "/"
	}

	if method != "GET" && method != "HEAD" {
		e.logf(ChannelRequest, LevelDebug, "%s %s -> 405", method, path)
		return respond(call, "405 Method Not Allowed", []Header{
			{Name: "Allow", Value: "GET, HEAD"},
			{Name: "Content-Type", Value: "text/plain"},
		}, []byte("method not allowed\n"), method != "HEAD")
	}

	if path == "/" || path == "/capabilities.json" {
		return e.serveCapabilities(call, method, path)
	}
	return e.serveTile(ctx, call, method, path)
}

func (e *Engine) serveTile(ctx context.Context, call *Call, method, path string) error {
	layer, grid, z, x, y, ext, err := parseTilePath(path)
	if err != nil {
		e.logf(ChannelRequest, LevelDebug, "%s %s -> 404 (%v)", method, path, err)
		return respondNotFound(call, method)
	}
	set, ok := e.serving[setKey{layer: layer, grid: grid}]
	if !ok || !matchesFormat(ext, set.format) {
		e.logf(ChannelRequest, LevelDebug, "%s %s -> 404", method, path)
		return respondNotFound(call, method)
	}

	var firstErr error
	for _, bc := range set.caches {
		data, err := bc.store.Tile(ctx, z, x, y)
		if err == nil {
			e.logf(ChannelRequest, LevelDebug, "%s %s -> 200 (%s, %d bytes)", method, path, bc.name, len(data))
			return respond(call, "200 OK", []Header{
				{Name: "Content-Type", Value: mimeByFormat(set.format)},
				{Name: "Content-Length", Value: strconv.Itoa(len(data))},
			}, data, method != "HEAD")
		}
		if errors.Is(err, cache.ErrTileNotFound) {
			continue
		}
		e.logErr(ChannelCache, LevelError, fmt.Errorf("cache %q tile %d/%d/%d: %w", bc.name, z, x, y, err))
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		if call.ErrLog != nil {
			fmt.Fprintf(call.ErrLog, "tile %s/%s %d/%d/%d: %v\n", layer, grid, z, x, y, firstErr)
		}
		e.logf(ChannelRequest, LevelDebug, "%s %s -> 500", method, path)
		return respond(call, "500 Internal Server Error", []Header{
			{Name: "Content-Type", Value: "text/plain"},
		}, []byte("tile store failure\n"), method != "HEAD")
	}
	e.logf(ChannelRequest, LevelDebug, "%s %s -> 404", method, path)
	return respondNotFound(call, method)
}

type capabilityTileSet struct {
	Path    string      `json:"path"`
	Format  string      `json:"format"`
	BBox    *[4]float64 `json:"bbox,omitempty"`
	MinZoom *int        `json:"minzoom,omitempty"`
	MaxZoom *int        `json:"maxzoom,omitempty"`
}

func (e *Engine) serveCapabilities(call *Call, method, path string) error {
	sets := make([]capabilityTileSet, 0, len(e.sets))
	for _, ts := range e.sets {
		entry := capabilityTileSet{Path: ts.Layer + "/" + ts.Grid, Format: ts.Format}
		if ext, err := e.Extent(ts.Layer, ts.Grid); err == nil {
			bbox := [4]float64{ext.MinLon, ext.MinLat, ext.MaxLon, ext.MaxLat}
			minZoom, maxZoom := ext.MinZoom, ext.MaxZoom
			entry.BBox = &bbox
			entry.MinZoom = &minZoom
			entry.MaxZoom = &maxZoom
		}
		sets = append(sets, entry)
	}
	body, err := json.Marshal(map[string]any{"tilesets": sets})
	if err != nil {
		return err
	}
	e.logf(ChannelRequest, LevelDebug, "%s %s -> 200", method, path)
	return respond(call, "200 OK", []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Content-Length", Value: strconv.Itoa(len(body))},
	}, body, method != "HEAD")
}

func respondNotFound(call *Call, method string) error {
	return respond(call, "404 Not Found", []Header{
		{Name: "Content-Type", Value: "text/plain"},
	}, []byte("not found\n"), method != "HEAD")
}

func respond(call *Call, status string, headers []Header, body []byte, writeBody bool) error {
	w, err := call.Responder.Start(status, headers)
	if err != nil {
		return err
	}
	if !writeBody || len(body) == 0 {
		return nil
	}
	_, err = w.Write(body)
	return err
}

// parseTilePath splits /{layer}/{grid}/{z}/{x}/{y}.{ext}.
func parseTilePath(p string) (layer, grid string, z, x, y int, ext string, err error) {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	if len(parts) != 5 {
		return "", "", 0, 0, 0, "", fmt.Errorf("not a tile path")
	}
	layer, grid = parts[0], parts[1]
	if layer == "" || grid == "" {
		return "", "", 0, 0, 0, "", fmt.Errorf("not a tile path")
	}
	z, err = strconv.Atoi(parts[2])
	if err != nil || z < 0 {
		return "", "", 0, 0, 0, "", fmt.Errorf("bad zoom %q", parts[2])
	}
	x, err = strconv.Atoi(parts[3])
	if err != nil || x < 0 {
		return "", "", 0, 0, 0, "", fmt.Errorf("bad column %q", parts[3])
	}
	name := parts[4]
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return "", "", 0, 0, 0, "", fmt.Errorf("bad tile name %q", name)
	}
	y, err = strconv.Atoi(name[:dot])
	if err != nil || y < 0 {
		return "", "", 0, 0, 0, "", fmt.Errorf("bad row %q", name[:dot])
	}
	return layer, grid, z, x, y, name[dot+1:], nil
}

// matchesFormat reports whether a request extension addresses tiles of
// the given format. jpg and jpeg are interchangeable.
func matchesFormat(ext, format string) bool {
	if ext == format {
		return true
	}
	return (ext == "jpg" || ext == "jpeg") && (format == "jpg" || format == "jpeg")
}

func mimeByFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "pbf", "mvt":
		return "application/x-protobuf"
	case "json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
