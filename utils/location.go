package utils

import (
	"math"
	"sort"

	"github.com/uber/h3-go/v4"
)

// Location represents a geographical coordinate
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineDistance calculates the distance between two points on Earth using the Haversine formula
// Returns distance in kilometers
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	// Differences in coordinates
	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// Coordinates is implemented by anything that can sit on the map. The second
// return reports whether a location is actually set; entities without one
// never match a radius query.
type Coordinates interface {
	Coordinates() (lat, lng float64, ok bool)
}

// WithinRadius filters candidates to those within radiusKm of the origin and
// returns them sorted by ascending distance
func WithinRadius[T Coordinates](originLat, originLng float64, candidates []T, radiusKm float64) []T {
	type scored struct {
		item     T
		distance float64
	}

	var nearby []scored
	for _, c := range candidates {
		lat, lng, ok := c.Coordinates()
		if !ok {
			continue
		}
		d := HaversineDistance(originLat, originLng, lat, lng)
		if d <= radiusKm {
			nearby = append(nearby, scored{item: c, distance: d})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].distance < nearby[j].distance
	})

	result := make([]T, 0, len(nearby))
	for _, s := range nearby {
		result = append(result, s.item)
	}
	return result
}

// IsLocationValid checks if the provided coordinates are valid
func IsLocationValid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// DefaultRequestRadiusKm is the fixed radius for request-to-provider visibility
const DefaultRequestRadiusKm = 10.0

// Browse radius bands offered to marketplace callers
var BrowseRadiusBandsKm = []float64{5, 10, 25}

// Average hexagon edge lengths for the two resolutions in use, in kilometers
const (
	cellResFine      = 7
	cellResCoarse    = 6
	cellEdgeFineKm   = 1.2207
	cellEdgeCoarseKm = 3.2293
)

// CellResolution picks the grid resolution for a radius band: short radii use
// the finer grid, anything above 10 km the coarser one.
func CellResolution(radiusKm float64) int {
	if radiusKm <= 10 {
		return cellResFine
	}
	return cellResCoarse
}

// CellAt returns the hexagonal cell containing the coordinate at the given resolution
func CellAt(lat, lng float64, resolution int) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(lat, lng), resolution)
}

// CellCover is a coarse approximation of a radius disk: the origin cell plus
// a k-ring of neighbors. Membership is a cheap prefilter that admits false
// positives; callers still apply the precise haversine check.
type CellCover struct {
	resolution int
	cells      map[h3.Cell]struct{}
}

// CoverCells computes the cell cover of a radius around an origin
func CoverCells(lat, lng, radiusKm float64) CellCover {
	resolution := CellResolution(radiusKm)
	edge := cellEdgeFineKm
	if resolution == cellResCoarse {
		edge = cellEdgeCoarseKm
	}

	// Rings step roughly 1.5 edge lengths apart center to center
	k := int(math.Ceil(radiusKm / (edge * 1.5)))

	origin := CellAt(lat, lng, resolution)
	cells := make(map[h3.Cell]struct{})
	for _, c := range h3.GridDisk(origin, k) {
		cells[c] = struct{}{}
	}

	return CellCover{resolution: resolution, cells: cells}
}

// Contains reports whether a coordinate falls in the cover
func (cc CellCover) Contains(lat, lng float64) bool {
	_, ok := cc.cells[CellAt(lat, lng, cc.resolution)]
	return ok
}

// Size returns the number of cells in the cover
func (cc CellCover) Size() int {
	return len(cc.cells)
}
