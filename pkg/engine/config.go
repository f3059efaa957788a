package engine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the engine's view of an effective chart configuration. Only
// the sections the engine acts on are typed; everything else passes
// through untouched.
type Config struct {
	Services map[string]yaml.Node    `yaml:"services"`
	Layers   LayerList               `yaml:"layers"`
	Caches   map[string]CacheConfig  `yaml:"caches"`
	Sources  map[string]SourceConfig `yaml:"sources"`
	Grids    map[string]GridConfig   `yaml:"grids"`
	Globals  GlobalsConfig           `yaml:"globals"`
}

// Layer is one servable map layer.
type Layer struct {
	// Name addresses the layer in tile URLs.
	Name string `yaml:"name"`

	// Title is a human readable label.
	Title string `yaml:"title"`

	// Sources lists the cache names the layer reads, in priority order.
	Sources []string `yaml:"sources"`
}

// LayerList holds the layers section, which configurations write either
// as a sequence of entries carrying a name field or as a mapping from
// name to entry body. Both forms decode to the same ordered list; in the
// mapping form the key overrides any inline name field.
type LayerList []Layer

// UnmarshalYAML decodes either layers form.
func (l *LayerList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var layers []Layer
		if err := node.Decode(&layers); err != nil {
			return err
		}
		*l = layers
		return nil
	case yaml.MappingNode:
		layers := make([]Layer, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var layer Layer
			if err := node.Content[i+1].Decode(&layer); err != nil {
				return err
			}
			layer.Name = node.Content[i].Value
			layers = append(layers, layer)
		}
		*l = layers
		return nil
	default:
		return fmt.Errorf("line %d: layers must be a sequence or a mapping", node.Line)
	}
}

// CacheConfig is one entry of the caches section.
type CacheConfig struct {
	// Grids lists the grid names this cache is tiled on.
	Grids []string `yaml:"grids"`

	// Sources lists upstream source names. The embedded engine serves
	// from the local store only, so sources here are declarative.
	Sources []string `yaml:"sources"`

	// Format is the tile image format, for example "image/png".
	Format string `yaml:"format"`

	// Cache configures the backing tile store.
	Cache CacheStore `yaml:"cache"`
}

// CacheStore configures a tile store backend.
type CacheStore struct {
	// Type selects the backend: "sqlite", "mbtiles", "files", "file"
	// or "redis".
	Type string `yaml:"type"`

	// Filename is the database path for sqlite backed stores.
	Filename string `yaml:"filename"`

	// Directory is the tree root for file backed stores.
	Directory string `yaml:"directory"`

	// Host, Port, DB and Prefix configure redis backed stores.
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

// SourceConfig is one entry of the sources section. The embedded engine
// never fetches from upstreams; the section is validated and logged only.
type SourceConfig struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	SeedOnly bool   `yaml:"seed_only"`
}

// GridConfig is one entry of the grids section.
type GridConfig struct {
	SRS    string    `yaml:"srs"`
	BBox   []float64 `yaml:"bbox"`
	Levels int       `yaml:"num_levels"`
}

// GlobalsConfig carries engine wide defaults.
type GlobalsConfig struct {
	Image ImageConfig `yaml:"image"`
}

// ImageConfig holds image handling defaults.
type ImageConfig struct {
	// Format is the fallback tile format for caches that set none.
	Format string `yaml:"format"`
}

// formatSubtype reduces a format spec to its bare subtype: "image/png"
// and "png" both yield "png".
func formatSubtype(format string) string {
	if i := strings.LastIndex(format, "/"); i >= 0 {
		return format[i+1:]
	}
	return format
}
