// Package handlers provides HTTP request handlers for the tilegate server.
//
// # Overview
//
// The handlers package implements the two request surfaces the server
// exposes:
//
//   - TileHandler: bridges everything under the tile URL prefix into the
//     embedded tile engine and records per-layer statistics and metrics
//   - API handlers: /api/status, /api/maps, /api/mappings and /api/stats
//     for chart plotters and operators
//
// # Tile Requests
//
// Tile requests are not interpreted by the handler beyond extracting the
// layer and coordinates for observability. The engine owns dispatch: it
// serves tiles, the capabilities document, and 404s for everything else.
// The handler's job is transport adaptation, status classification and
// accounting.
//
// # API Responses
//
// API handlers respond with JSON and allow GET only. Shapes follow the
// supervisor's exported types, so /api/status mirrors supervisor.Status
// and /api/maps mirrors []supervisor.MapInfo.
package handlers
