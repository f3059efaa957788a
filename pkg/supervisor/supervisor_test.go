package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portolan-hq/tilegate/pkg/engine"
	"github.com/portolan-hq/tilegate/pkg/logbridge"
)

const testChart = `
layers:
  - name: osm
    title: OpenStreetMap
    sources: [osm_cache]
caches:
  osm_cache:
    grids: [GLOBAL_WEBMERCATOR]
    cache:
      type: sqlite
      filename: charts.sqlite
sources: {}
`

type fakeApp struct {
	closed  atomic.Bool
	sets    []engine.TileSet
	extents map[string]engine.Extent
}

func (a *fakeApp) Invoke(ctx context.Context, call *engine.Call) error { return nil }

func (a *fakeApp) TileSets() []engine.TileSet { return a.sets }

func (a *fakeApp) Extent(layer, grid string) (engine.Extent, error) {
	if ext, ok := a.extents[layer+"/"+grid]; ok {
		return ext, nil
	}
	return engine.Extent{}, errors.New("no coverage")
}

func (a *fakeApp) Close() error {
	a.closed.Store(true)
	return nil
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticFactory(app engine.Application) Factory {
	return func(path string) (engine.Application, error) { return app, nil }
}

func newTestSupervisor(t *testing.T, factory Factory) (*Supervisor, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "avnav.yaml")
	if err := os.WriteFile(path, []byte(testChart), 0o644); err != nil {
		t.Fatalf("write chart config: %v", err)
	}
	elog := logbridge.New(logbridge.Options{Sink: discardLog()})
	sup, err := New(Config{
		ConfigPath: path,
		URLPrefix:  "/tilegate/api",
		Factory:    factory,
		EngineLog:  elog,
		Logger:     discardLog(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { sup.Close() })
	return sup, path
}

func touch(t *testing.T, path string, offset time.Duration) {
	t.Helper()
	stamp := time.Now().Add(offset)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestStatusLifecycle(t *testing.T) {
	var calls int
	factory := func(path string) (engine.Application, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("grid misconfigured")
		}
		return &fakeApp{}, nil
	}
	sup, path := newTestSupervisor(t, factory)

	st := sup.Status()
	if st.Running || st.State != StateUnknown {
		t.Errorf("fresh instance: expected {false unknown}, got %+v", st)
	}
	if st.LastError != nil {
		t.Errorf("fresh instance: expected no lastError, got %q", *st.LastError)
	}

	rebuilt, err := sup.Rebuild(false, false)
	if err != nil || !rebuilt {
		t.Fatalf("expected a successful build, got rebuilt=%v err=%v", rebuilt, err)
	}
	st = sup.Status()
	if !st.Running || st.State != StateOK {
		t.Errorf("after build: expected {true ok}, got %+v", st)
	}

	touch(t, path, 2*time.Second)
	rebuilt, err = sup.Rebuild(false, false)
	if err == nil || rebuilt {
		t.Fatalf("expected the factory failure, got rebuilt=%v err=%v", rebuilt, err)
	}
	st = sup.Status()
	if st.Running || st.State != StateError {
		t.Errorf("after failure: expected {false error}, got %+v", st)
	}
	if st.LastError == nil || !strings.Contains(*st.LastError, "grid misconfigured") {
		t.Errorf("expected the failure text, got %v", st.LastError)
	}
}

func TestChangedOnlySkipsUnchanged(t *testing.T) {
	sup, _ := newTestSupervisor(t, staticFactory(&fakeApp{}))

	rebuilt, err := sup.Rebuild(true, false)
	if err != nil || !rebuilt {
		t.Fatalf("first call: expected a build, got rebuilt=%v err=%v", rebuilt, err)
	}
	rebuilt, err = sup.Rebuild(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilt {
		t.Error("expected the unchanged file to be skipped")
	}
}

func TestChangedOnlyRebuildsAfterTouch(t *testing.T) {
	sup, path := newTestSupervisor(t, staticFactory(&fakeApp{}))

	if _, err := sup.Rebuild(true, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	touch(t, path, 2*time.Second)
	rebuilt, err := sup.Rebuild(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rebuilt {
		t.Error("expected a rebuild after the timestamp changed")
	}
}

func TestRebuildMissingConfig(t *testing.T) {
	sup, path := newTestSupervisor(t, staticFactory(&fakeApp{}))

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rebuilt, err := sup.Rebuild(false, false)
	if rebuilt {
		t.Error("expected no rebuild")
	}
	var missing *ConfigMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *ConfigMissingError, got %v", err)
	}
	if sup.App() != nil {
		t.Error("expected the held application to be released")
	}
	if st := sup.Status(); st.Running {
		t.Errorf("expected not running, got %+v", st)
	}
}

func TestRebuildWritesEffectivePair(t *testing.T) {
	sup, path := newTestSupervisor(t, staticFactory(&fakeApp{}))
	base := filepath.Join(filepath.Dir(path), "effective.yaml")

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(base + ".normal"); err != nil {
		t.Errorf("expected the normal file: %v", err)
	}
	if _, err := os.Stat(base + ".offline"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no offline file, got %v", err)
	}

	touch(t, path, 2*time.Second)
	if _, err := sup.Rebuild(false, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(base + ".offline"); err != nil {
		t.Errorf("expected the offline file: %v", err)
	}
	if _, err := os.Stat(base + ".normal"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the normal file gone, got %v", err)
	}
}

func TestRepeatedRebuildKeepsContentStable(t *testing.T) {
	sup, path := newTestSupervisor(t, staticFactory(&fakeApp{}))
	effective := filepath.Join(filepath.Dir(path), "effective.yaml.normal")

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := os.ReadFile(effective)
	if err != nil {
		t.Fatalf("read effective config: %v", err)
	}

	touch(t, path, 2*time.Second)
	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := os.ReadFile(effective)
	if err != nil {
		t.Fatalf("read effective config: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected identical effective content for an unchanged source")
	}
}

func TestMappingsSnapshot(t *testing.T) {
	sup, _ := newTestSupervisor(t, staticFactory(&fakeApp{}))

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	refs := sup.Mappings()["osm"]
	if len(refs) != 1 {
		t.Fatalf("expected 1 cache ref, got %d", len(refs))
	}
	if refs[0].Name != "osm_cache" {
		t.Errorf("expected osm_cache, got %q", refs[0].Name)
	}
	if !refs[0].HasBefore {
		t.Error("expected hasBefore for a sqlite cache")
	}
}

func TestRebuildFailureClearsMappings(t *testing.T) {
	var calls int
	factory := func(path string) (engine.Application, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("boom")
		}
		return &fakeApp{}, nil
	}
	sup, path := newTestSupervisor(t, factory)

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sup.Mappings()) == 0 {
		t.Fatal("expected mappings after a successful build")
	}

	touch(t, path, 2*time.Second)
	if _, err := sup.Rebuild(false, false); err == nil {
		t.Fatal("expected the factory failure")
	}
	if got := sup.Mappings(); len(got) != 0 {
		t.Errorf("expected mappings cleared, got %v", got)
	}
}

func TestMaps(t *testing.T) {
	app := &fakeApp{
		sets: []engine.TileSet{
			{Layer: "osm", Grid: "GLOBAL_WEBMERCATOR", Format: "png"},
			{Layer: "bare", Grid: "GLOBAL_GEODETIC", Format: "png"},
		},
		extents: map[string]engine.Extent{
			"osm/GLOBAL_WEBMERCATOR": {MinLon: 5.5, MinLat: 53, MaxLon: 14.5, MaxLat: 56, MinZoom: 3, MaxZoom: 12},
		},
	}
	sup, _ := newTestSupervisor(t, staticFactory(app))
	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maps := sup.Maps()
	if len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(maps))
	}

	osm := maps[0]
	if osm.Name != "osm" {
		t.Errorf("expected name osm, got %q", osm.Name)
	}
	if osm.URL != "/tilegate/api/osm/GLOBAL_WEBMERCATOR" {
		t.Errorf("unexpected url %q", osm.URL)
	}
	if osm.Internal.Path != "osm/GLOBAL_WEBMERCATOR" {
		t.Errorf("unexpected path %q", osm.Internal.Path)
	}
	if osm.Internal.MinLon == nil || *osm.Internal.MinLon != 5.5 {
		t.Errorf("expected coverage fields, got %+v", osm.Internal)
	}
	if osm.Internal.MaxZoom == nil || *osm.Internal.MaxZoom != 12 {
		t.Errorf("expected zoom fields, got %+v", osm.Internal)
	}

	bare := maps[1]
	if bare.Internal.MinLon != nil || bare.Internal.MinZoom != nil {
		t.Errorf("expected no coverage fields for the failing layer, got %+v", bare.Internal)
	}
}

func TestMapsEmptyWithoutApp(t *testing.T) {
	sup, _ := newTestSupervisor(t, staticFactory(&fakeApp{}))
	if maps := sup.Maps(); len(maps) != 0 {
		t.Errorf("expected an empty listing, got %d entries", len(maps))
	}
}

func TestOldAppRetiredOnRebuild(t *testing.T) {
	first := &fakeApp{}
	second := &fakeApp{}
	var calls int
	factory := func(path string) (engine.Application, error) {
		calls++
		if calls == 1 {
			return first, nil
		}
		return second, nil
	}
	sup, path := newTestSupervisor(t, factory)

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	touch(t, path, 2*time.Second)
	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !first.closed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("expected the first application to be closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if sup.App() != second {
		t.Error("expected the second application to be current")
	}
}

func TestCloseReleasesApp(t *testing.T) {
	app := &fakeApp{}
	sup, _ := newTestSupervisor(t, staticFactory(app))

	if _, err := sup.Rebuild(false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.closed.Load() {
		t.Error("expected the application to be closed")
	}
	if sup.App() != nil {
		t.Error("expected no application after Close")
	}
}
