package chartconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// seedableCacheTypes are the cache storage types that support incremental
// seed-only updates, surfaced to callers through the hasBefore flag.
var seedableCacheTypes = map[string]bool{
	"sqlite": true,
	"files":  true,
}

// CacheRef is a snapshot of one cache entry referenced by a layer, tagged
// with the cache's name and its derived hasBefore flag.
type CacheRef struct {
	// Name is the cache's key in the caches mapping.
	Name string

	// HasBefore reports whether the cache storage type supports incremental
	// updates (true for the sqlite and files backends).
	HasBefore bool

	// Fields are the cache entry's own fields, decoded as plain values.
	Fields map[string]any
}

// MarshalJSON flattens the snapshot into one object: the cache fields plus
// name and hasBefore.
func (r CacheRef) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat["name"] = r.Name
	flat["hasBefore"] = r.HasBefore
	return json.Marshal(flat)
}

// LayerCacheMapping maps a layer name to the ordered cache snapshots its
// sources reference. Built once per configuration build and held for the
// lifetime of the running application.
type LayerCacheMapping map[string][]CacheRef

// PrepareOptions controls Prepare.
type PrepareOptions struct {
	// Path is the chart configuration file to load. Ignored when Document
	// is set.
	Path string

	// Document, when set, is merged against its base chain instead of
	// loading Path.
	Document *Document

	// BaseDir overrides the directory base paths resolve against. Defaults
	// to Path's directory.
	BaseDir string

	// Offline marks every source entry seed_only in the merged result.
	Offline bool
}

// Prepare produces the effective configuration document and its layer/cache
// mapping. The document is loaded (or taken from the options), its base
// chain resolved, offline marking applied, and the mapping extracted when
// both layers and caches are present.
func Prepare(opts PrepareOptions) (*Document, LayerCacheMapping, error) {
	doc := opts.Document
	baseDir := opts.BaseDir
	if doc == nil {
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("prepare: neither a path nor a document was given")
		}
		loaded, err := Load(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		doc = loaded
		if baseDir == "" {
			baseDir = filepath.Dir(opts.Path)
		}
	}

	merged, err := ResolveBases(doc, baseDir)
	if err != nil {
		return nil, nil, err
	}
	if opts.Offline {
		markSeedOnly(merged)
	}
	mapping, err := BuildLayerCaches(merged)
	if err != nil {
		return nil, nil, err
	}
	return merged, mapping, nil
}

// markSeedOnly sets seed_only on every entry of the top-level sources
// mapping. Non-mapping entries are left alone.
func markSeedOnly(doc *Document) {
	sources := doc.Get("sources")
	if sources == nil || sources.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(sources.Content); i += 2 {
		entry := resolveAlias(sources.Content[i+1])
		if entry.Kind != yaml.MappingNode {
			continue
		}
		setMappingValue(entry, "seed_only", boolNode(true))
	}
}

// BuildLayerCaches derives the layer to cache mapping from a merged
// document. Layers without a name or without sources matching a cache name
// contribute nothing; zero matches overall is not an error. The result is
// empty when either layers or caches is absent.
func BuildLayerCaches(doc *Document) (LayerCacheMapping, error) {
	layersNode := doc.Get(layersKey)
	cachesNode := doc.Get("caches")
	mapping := LayerCacheMapping{}
	if layersNode == nil || cachesNode == nil {
		return mapping, nil
	}
	if cachesNode.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "caches must be a mapping"}
	}
	entries, err := layerEntries(layersNode, false)
	if err != nil {
		return nil, err
	}

	caches := make(map[string]CacheRef, len(cachesNode.Content)/2)
	for i := 0; i+1 < len(cachesNode.Content); i += 2 {
		name := cachesNode.Content[i].Value
		entry := resolveAlias(cachesNode.Content[i+1])
		if entry.Kind != yaml.MappingNode {
			continue
		}
		var fields map[string]any
		if err := entry.Decode(&fields); err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("decoding cache %q", name), Cause: err}
		}
		caches[name] = CacheRef{
			Name:      name,
			HasBefore: cacheHasBefore(entry),
			Fields:    fields,
		}
	}

	for _, layer := range entries {
		sources := mappingValue(layer.body, "sources")
		if sources == nil || sources.Kind != yaml.SequenceNode {
			continue
		}
		for _, src := range sources.Content {
			name, ok := scalarValue(src)
			if !ok {
				continue
			}
			ref, ok := caches[name]
			if !ok {
				continue
			}
			mapping[layer.name] = append(mapping[layer.name], ref)
		}
	}
	return mapping, nil
}

// cacheHasBefore reads the nested cache.type field. A missing or malformed
// cache mapping means no incremental update support.
func cacheHasBefore(entry *yaml.Node) bool {
	inner := mappingValue(entry, "cache")
	if inner == nil || inner.Kind != yaml.MappingNode {
		return false
	}
	t, ok := scalarValue(mappingValue(inner, "type"))
	return ok && seedableCacheTypes[t]
}
