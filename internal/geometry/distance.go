package geometry

import (
	"fmt"
	"math"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// DistanceType selects how distances between coordinates are measured.
type DistanceType string

const (
	// DistanceHaversine measures great-circle distance in meters.
	DistanceHaversine DistanceType = "haversine"
	// DistancePlanar measures straight-line distance in raw coordinate units.
	DistancePlanar DistanceType = "planar"
)

const earthRadiusMeters = 6371000.0

// NewDistance returns the distance function for the given type.
func NewDistance(kind DistanceType) (DistanceFunc, error) {
	switch kind {
	case DistanceHaversine:
		return Haversine, nil
	case DistancePlanar:
		return Planar, nil
	default:
		return nil, fmt.Errorf("unsupported distance type: %s", kind)
	}
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b models.Coordinates) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// Planar treats coordinates as points on a plane.
func Planar(a, b models.Coordinates) float64 {
	return math.Hypot(b.Latitude-a.Latitude, b.Longitude-a.Longitude)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
