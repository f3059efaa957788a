package handlers

import (
	"log/slog"
	"net/http"

	"github.com/portolan-hq/tilegate/pkg/stats"
	"github.com/portolan-hq/tilegate/pkg/supervisor"
)

// StatusHandler reports the engine lifecycle state.
type StatusHandler struct {
	host EngineHost
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(host EngineHost) *StatusHandler {
	return &StatusHandler{host: host}
}

// ServeHTTP implements http.Handler for /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.host.Status())
}

// MapsHandler lists the servable maps.
type MapsHandler struct {
	host EngineHost
}

// NewMapsHandler creates a maps handler.
func NewMapsHandler(host EngineHost) *MapsHandler {
	return &MapsHandler{host: host}
}

// ServeHTTP implements http.Handler for /api/maps. The response is the
// ordered map list; an empty engine yields an empty array.
func (h *MapsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maps := h.host.Maps()
	if maps == nil {
		maps = []supervisor.MapInfo{}
	}
	writeJSON(w, http.StatusOK, maps)
}

// MappingsHandler reports the layer to cache mapping of the current
// configuration.
type MappingsHandler struct {
	host EngineHost
}

// NewMappingsHandler creates a mappings handler.
func NewMappingsHandler(host EngineHost) *MappingsHandler {
	return &MappingsHandler{host: host}
}

// ServeHTTP implements http.Handler for /api/mappings.
func (h *MappingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mappings := h.host.Mappings()
	if mappings == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

// StatsHandler reports accumulated per-layer request counts.
type StatsHandler struct {
	store stats.Store
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(store stats.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// ServeHTTP implements http.Handler for /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	totals, err := h.store.Totals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read request statistics", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "statistics unavailable")
		return
	}
	if totals == nil {
		totals = []stats.LayerCount{}
	}
	writeJSON(w, http.StatusOK, totals)
}
