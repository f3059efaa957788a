package chartconfig

import (
	"encoding/json"
	"testing"
)

func TestPrepareOfflineMarksSources(t *testing.T) {
	doc := mustParse(t, `
sources:
  chart_src:
    type: tile
    url: http://upstream/tiles
  other_src:
    type: wms
`)

	merged, _, err := Prepare(PrepareOptions{Document: doc, BaseDir: t.TempDir(), Offline: true})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	got := asMap(t, merged)
	sources := got["sources"].(map[string]any)
	for name, raw := range sources {
		src := raw.(map[string]any)
		if src["seed_only"] != true {
			t.Errorf("expected seed_only on %s, got %v", name, src["seed_only"])
		}
	}
}

func TestPrepareNormalLeavesSourcesAlone(t *testing.T) {
	doc := mustParse(t, "sources:\n  chart_src:\n    type: tile\n")

	merged, _, err := Prepare(PrepareOptions{Document: doc, BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	src := asMap(t, merged)["sources"].(map[string]any)["chart_src"].(map[string]any)
	if _, ok := src["seed_only"]; ok {
		t.Error("expected no seed_only marker in normal mode")
	}
}

func TestCacheHasBefore(t *testing.T) {
	tests := []struct {
		name   string
		caches string
		want   bool
	}{
		{
			name:   "sqlite supports incremental updates",
			caches: "caches:\n  store:\n    cache:\n      type: sqlite\n      filename: charts.mbtiles\n",
			want:   true,
		},
		{
			name:   "files supports incremental updates",
			caches: "caches:\n  store:\n    cache:\n      type: files\n      directory: tiles\n",
			want:   true,
		},
		{
			name:   "s3 does not",
			caches: "caches:\n  store:\n    cache:\n      type: s3\n      bucket: charts\n",
			want:   false,
		},
		{
			name:   "absent cache mapping",
			caches: "caches:\n  store:\n    grids: [GLOBAL_WEBMERCATOR]\n",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "layers:\n  - name: chart\n    sources: [store]\n"+tt.caches)

			mapping, err := BuildLayerCaches(doc)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			refs := mapping["chart"]
			if len(refs) != 1 {
				t.Fatalf("expected one cache ref, got %d", len(refs))
			}
			if refs[0].HasBefore != tt.want {
				t.Errorf("expected hasBefore=%v, got %v", tt.want, refs[0].HasBefore)
			}
		})
	}
}

func TestBuildLayerCachesMappingFormTakesKeyAsName(t *testing.T) {
	doc := mustParse(t, `
layers:
  chart:
    sources: [store, missing]
caches:
  store:
    cache:
      type: sqlite
`)

	mapping, err := BuildLayerCaches(doc)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	refs := mapping["chart"]
	if len(refs) != 1 {
		t.Fatalf("expected the matching source only, got %d refs", len(refs))
	}
	if refs[0].Name != "store" {
		t.Errorf("expected cache name store, got %q", refs[0].Name)
	}
}

func TestBuildLayerCachesOrderFollowsSources(t *testing.T) {
	doc := mustParse(t, `
layers:
  - name: chart
    sources: [second, first]
caches:
  first:
    cache: {type: files}
  second:
    cache: {type: sqlite}
`)

	mapping, err := BuildLayerCaches(doc)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	refs := mapping["chart"]
	if len(refs) != 2 {
		t.Fatalf("expected two refs, got %d", len(refs))
	}
	if refs[0].Name != "second" || refs[1].Name != "first" {
		t.Errorf("expected source order preserved, got %q then %q", refs[0].Name, refs[1].Name)
	}
}

func TestBuildLayerCachesContributesNothing(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "no layers",
			src:  "caches:\n  store:\n    cache: {type: sqlite}\n",
		},
		{
			name: "no caches",
			src:  "layers:\n  - name: chart\n    sources: [store]\n",
		},
		{
			name: "nameless layer",
			src:  "layers:\n  - sources: [store]\ncaches:\n  store:\n    cache: {type: sqlite}\n",
		},
		{
			name: "no matching sources",
			src:  "layers:\n  - name: chart\n    sources: [elsewhere]\ncaches:\n  store:\n    cache: {type: sqlite}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := BuildLayerCaches(mustParse(t, tt.src))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mapping) != 0 {
				t.Errorf("expected empty mapping, got %v", mapping)
			}
		})
	}
}

func TestCacheRefJSONFlattens(t *testing.T) {
	ref := CacheRef{
		Name:      "store",
		HasBefore: true,
		Fields: map[string]any{
			"grids": []any{"GLOBAL_WEBMERCATOR"},
			"cache": map[string]any{"type": "sqlite"},
		},
	}

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got["name"] != "store" {
		t.Errorf("expected name field, got %v", got["name"])
	}
	if got["hasBefore"] != true {
		t.Errorf("expected hasBefore field, got %v", got["hasBefore"])
	}
	if _, ok := got["grids"]; !ok {
		t.Error("expected cache fields flattened into the object")
	}
}
