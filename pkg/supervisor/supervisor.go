package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/portolan-hq/tilegate/pkg/chartconfig"
	"github.com/portolan-hq/tilegate/pkg/engine"
)

// EngineLog is the log bridge shared with the embedded application.
// Records flow in through engine.Logger; captured fatal text flows back
// out through FatalError.
type EngineLog interface {
	engine.Logger
	FatalError(reset bool) (string, bool)
}

// Factory builds an application from an effective configuration file.
type Factory func(path string) (engine.Application, error)

// Config configures New.
type Config struct {
	// ConfigPath is the chart configuration rebuilds read.
	ConfigPath string

	// WorkDir receives the effective configuration pair. Default:
	// ConfigPath's directory.
	WorkDir string

	// EffectiveName is the base name of the written pair; the actual
	// files carry the mode suffix. Default: "effective.yaml".
	EffectiveName string

	// URLPrefix prefixes map URLs reported by Maps.
	URLPrefix string

	// Factory builds the application. The default runs the embedded
	// engine with EngineLog as its sink and resolves store paths against
	// ConfigPath's directory.
	Factory Factory

	// EngineLog bridges engine records and holds the fatal slot.
	// Required.
	EngineLog EngineLog

	// Logger is the supervisor's own log. Default: slog.Default().
	Logger *slog.Logger
}

type appBox struct {
	app engine.Application
}

// Supervisor owns the embedded application lifecycle: merging and
// persisting the effective configuration, building the application,
// swapping it in atomically and reporting status. Rebuild calls are
// serialized internally; request paths read the handle without locking.
type Supervisor struct {
	configPath string
	workBase   string
	urlPrefix  string
	factory    Factory
	elog       EngineLog
	log        *slog.Logger

	mu        sync.Mutex
	lastStamp time.Time
	hasStamp  bool

	app atomic.Pointer[appBox]

	mapMu    sync.RWMutex
	mappings chartconfig.LayerCacheMapping
}

// New builds a supervisor. No application exists until the first
// successful Rebuild.
func New(cfg Config) (*Supervisor, error) {
	if cfg.ConfigPath == "" {
		return nil, fmt.Errorf("supervisor: ConfigPath is required")
	}
	if cfg.EngineLog == nil {
		return nil, fmt.Errorf("supervisor: EngineLog is required")
	}
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(cfg.ConfigPath)
	}
	name := cfg.EffectiveName
	if name == "" {
		name = "effective.yaml"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := cfg.Factory
	if factory == nil {
		elog := cfg.EngineLog
		chartDir := filepath.Dir(cfg.ConfigPath)
		factory = func(path string) (engine.Application, error) {
			return engine.New(path, engine.Options{Logger: elog, BaseDir: chartDir})
		}
	}
	return &Supervisor{
		configPath: cfg.ConfigPath,
		workBase:   filepath.Join(workDir, name),
		urlPrefix:  cfg.URLPrefix,
		factory:    factory,
		elog:       cfg.EngineLog,
		log:        logger,
	}, nil
}

// App returns the current application handle, nil before the first
// successful build. The handle is swapped only after a replacement is
// fully constructed, so callers always see a complete application.
func (s *Supervisor) App() engine.Application {
	if box := s.app.Load(); box != nil {
		return box.app
	}
	return nil
}

// Rebuild merges the chart configuration, persists the effective file
// for the requested mode and replaces the application. It returns true
// when a build ran and false when changedOnly skipped an unchanged
// file. changedOnly is forced off while no application is held. A
// missing configuration file yields *ConfigMissingError and releases
// the held application.
//
// On failure the mapping snapshot is cleared, the error is recorded in
// the fatal slot and returned; no application is left running. The
// caller decides whether and when to retry.
func (s *Supervisor) Rebuild(changedOnly, offline bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.App() == nil {
		changedOnly = false
	}

	info, err := os.Stat(s.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.clearApp()
			return false, &ConfigMissingError{Path: s.configPath}
		}
		return false, fmt.Errorf("stat %s: %w", s.configPath, err)
	}
	stamp := info.ModTime()
	if changedOnly && s.hasStamp && stamp.Equal(s.lastStamp) {
		s.log.Debug("chart configuration unchanged, skipping rebuild", "path", s.configPath)
		return false, nil
	}

	s.elog.FatalError(true)
	s.clearApp()
	s.lastStamp = stamp
	s.hasStamp = true

	app, mapping, err := s.build(offline)
	if err != nil {
		s.setMappings(nil)
		s.elog.Log(engine.Record{Channel: engine.ChannelConfig, Level: engine.LevelFatal, Err: err})
		return false, err
	}

	s.setMappings(mapping)
	s.app.Store(&appBox{app: app})
	s.elog.FatalError(true)
	s.log.Info("tile application rebuilt",
		"config", s.configPath,
		"offline", offline,
		"layers", len(mapping),
	)
	return true, nil
}

func (s *Supervisor) build(offline bool) (engine.Application, chartconfig.LayerCacheMapping, error) {
	doc, mapping, err := chartconfig.Prepare(chartconfig.PrepareOptions{
		Path:    s.configPath,
		Offline: offline,
	})
	if err != nil {
		return nil, nil, err
	}
	dest := chartconfig.EffectivePath(s.workBase, offline)
	if err := chartconfig.Persist(doc, dest); err != nil {
		return nil, nil, err
	}
	app, err := s.factory(dest)
	if err != nil {
		return nil, nil, err
	}
	return app, mapping, nil
}

// Status reports the lifecycle snapshot. A held application reads as
// ok even when the fatal slot still carries text from an older failure;
// that text is stale by definition once a build succeeded.
func (s *Supervisor) Status() Status {
	if s.App() != nil {
		return Status{Running: true, State: StateOK}
	}
	if msg, ok := s.elog.FatalError(false); ok {
		return Status{Running: false, State: StateError, LastError: &msg}
	}
	return Status{Running: false, State: StateUnknown}
}

// Maps enumerates the servable maps. Coverage extraction failures are
// logged at debug and leave the affected entry without coverage fields;
// the entry itself is always listed.
func (s *Supervisor) Maps() []MapInfo {
	app := s.App()
	if app == nil {
		s.log.Debug("no tile application, map listing is empty")
		return []MapInfo{}
	}

	sets := app.TileSets()
	maps := make([]MapInfo, 0, len(sets))
	for _, ts := range sets {
		path := ts.Layer + "/" + ts.Grid
		url := path
		if s.urlPrefix != "" {
			url = strings.TrimSuffix(s.urlPrefix, "/") + "/" + path
		}
		info := MapInfo{
			Name: ts.Layer,
			URL:  url,
			Internal: MapInternal{
				Path:  path,
				Layer: ts.Layer,
				Grid:  ts.Grid,
			},
		}
		ext, err := app.Extent(ts.Layer, ts.Grid)
		if err != nil {
			s.log.Debug("unable to fetch coverage for layer",
				"layer", ts.Layer,
				"grid", ts.Grid,
				"error", err,
			)
		} else {
			info.Internal.MinLon = floatPtr(ext.MinLon)
			info.Internal.MinLat = floatPtr(ext.MinLat)
			info.Internal.MaxLon = floatPtr(ext.MaxLon)
			info.Internal.MaxLat = floatPtr(ext.MaxLat)
			info.Internal.MinZoom = intPtr(ext.MinZoom)
			info.Internal.MaxZoom = intPtr(ext.MaxZoom)
		}
		maps = append(maps, info)
	}
	return maps
}

// Mappings returns the layer cache snapshot captured at the last
// successful build.
func (s *Supervisor) Mappings() chartconfig.LayerCacheMapping {
	s.mapMu.RLock()
	defer s.mapMu.RUnlock()
	out := make(chartconfig.LayerCacheMapping, len(s.mappings))
	for layer, refs := range s.mappings {
		out[layer] = append([]chartconfig.CacheRef(nil), refs...)
	}
	return out
}

func (s *Supervisor) setMappings(m chartconfig.LayerCacheMapping) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	s.mappings = m
}

// clearApp drops the handle and retires the old application in the
// background; sqlite stores drain running queries before closing.
func (s *Supervisor) clearApp() {
	if old := s.app.Swap(nil); old != nil && old.app != nil {
		go old.app.Close()
	}
}

// Close releases the held application.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old := s.app.Swap(nil); old != nil && old.app != nil {
		return old.app.Close()
	}
	return nil
}
