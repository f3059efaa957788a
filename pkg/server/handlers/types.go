package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/portolan-hq/tilegate/pkg/chartconfig"
	"github.com/portolan-hq/tilegate/pkg/engine"
	"github.com/portolan-hq/tilegate/pkg/supervisor"
)

// EngineHost is the interface for the component holding the embedded tile
// engine. *supervisor.Supervisor implements it.
type EngineHost interface {
	App() engine.Application
	Status() supervisor.Status
	Maps() []supervisor.MapInfo
	Mappings() chartconfig.LayerCacheMapping
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error body with the given status code.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
