package supervisor

// Application states reported by Status.
const (
	StateOK      = "ok"
	StateError   = "error"
	StateUnknown = "unknown"
)

// Status is the lifecycle snapshot exposed to the host API.
type Status struct {
	// Running reports whether an application is currently held.
	Running bool `json:"running"`

	// State is one of ok, error or unknown. ok requires a running
	// application; error requires a recorded fatal; unknown is a fresh
	// or cleanly stopped instance.
	State string `json:"status"`

	// LastError carries the recorded fatal text in the error state.
	LastError *string `json:"lastError"`
}

// MapInfo describes one servable map for the host API.
type MapInfo struct {
	// Name is the layer name.
	Name string `json:"name"`

	// URL addresses the map's tile tree, prefixed with the supervisor's
	// URL prefix when one is configured.
	URL string `json:"url"`

	// Internal carries the addressing details and best effort coverage.
	Internal MapInternal `json:"internal"`
}

// MapInternal is the introspection detail of one map. Coverage fields
// are omitted when extraction failed for the layer.
type MapInternal struct {
	Path    string   `json:"path"`
	Layer   string   `json:"layer"`
	Grid    string   `json:"grid"`
	MinLon  *float64 `json:"minlon,omitempty"`
	MinLat  *float64 `json:"minlat,omitempty"`
	MaxLon  *float64 `json:"maxlon,omitempty"`
	MaxLat  *float64 `json:"maxlat,omitempty"`
	MinZoom *int     `json:"minzoom,omitempty"`
	MaxZoom *int     `json:"maxzoom,omitempty"`
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
