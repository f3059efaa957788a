package engine

import (
	"fmt"
	"math"
)

// webMercatorMax is the half-width of the spherical mercator square in
// projected meters.
const webMercatorMax = 20037508.342789244

// earthRadius is the WGS84 spherical radius used by EPSG:3857.
const earthRadius = 6378137.0

// defaultLevels is the zoom level count for grids that do not set one.
const defaultLevels = 20

// Grid describes a tile pyramid: a spatial reference, the projected
// extent it covers and the number of zoom levels.
type Grid struct {
	Name   string
	SRS    string
	BBox   [4]float64
	Levels int
}

// builtinGrids returns the grids every configuration can reference
// without declaring them.
func builtinGrids() map[string]Grid {
	return map[string]Grid{
		"GLOBAL_GEODETIC": {
			Name:   "GLOBAL_GEODETIC",
			SRS:    "EPSG:4326",
			BBox:   [4]float64{-180, -90, 180, 90},
			Levels: defaultLevels,
		},
		"GLOBAL_WEBMERCATOR": {
			Name:   "GLOBAL_WEBMERCATOR",
			SRS:    "EPSG:3857",
			BBox:   [4]float64{-webMercatorMax, -webMercatorMax, webMercatorMax, webMercatorMax},
			Levels: defaultLevels,
		},
		"GLOBAL_MERCATOR": {
			Name:   "GLOBAL_MERCATOR",
			SRS:    "EPSG:900913",
			BBox:   [4]float64{-webMercatorMax, -webMercatorMax, webMercatorMax, webMercatorMax},
			Levels: defaultLevels,
		},
	}
}

// mercatorToLonLat converts spherical mercator meters to degrees.
func mercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / earthRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// LLBBox returns the grid extent in lon/lat degrees. Grids in projections
// other than EPSG:4326 and spherical mercator cannot be converted and
// report an error.
func (g Grid) LLBBox() ([4]float64, error) {
	switch g.SRS {
	case "EPSG:4326", "CRS:84":
		return g.BBox, nil
	case "EPSG:3857", "EPSG:900913":
		minLon, minLat := mercatorToLonLat(g.BBox[0], g.BBox[1])
		maxLon, maxLat := mercatorToLonLat(g.BBox[2], g.BBox[3])
		return [4]float64{minLon, minLat, maxLon, maxLat}, nil
	default:
		return [4]float64{}, fmt.Errorf("no lon/lat conversion for srs %s", g.SRS)
	}
}

// TileSet identifies one servable layer and grid pairing.
type TileSet struct {
	// Layer is the layer name.
	Layer string

	// Grid is the grid name.
	Grid string

	// Format is the tile image format, as a bare subtype such as "png".
	Format string
}

// Extent describes the geographic coverage of a tile set.
type Extent struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
	MinZoom        int
	MaxZoom        int
}
