// Package geo holds the containment primitives for geofence evaluation.
// All coordinates are [lng, lat] pairs in WGS 84.
package geo

import (
	"math"

	"fleet-alert-service/internal/model"
)

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between two points in meters
// (haversine formula).
func Distance(a, b [2]float64) float64 {
	lat1 := toRad(a[1])
	lat2 := toRad(b[1])
	dLat := toRad(b[1] - a[1])
	dLon := toRad(b[0] - a[0])

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// PointInCircle reports whether point lies within radiusMeters of center.
// Geofence radii are meters, so this uses spherical distance rather than a
// degree-based approximation.
func PointInCircle(point, center [2]float64, radiusMeters float64) bool {
	return Distance(point, center) <= radiusMeters
}

// PointInRing runs the even-odd ray-casting test against the outer ring.
// The ring is treated as implicitly closed whether or not the caller repeated
// the first vertex at the end. Points exactly on an edge may classify either
// way; ray-casting is not boundary-exact and callers must not rely on it.
func PointInRing(point [2]float64, ring [][2]float64) bool {
	n := len(ring)
	// drop an explicit closing vertex so it does not double an edge
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return false
	}

	x, y := point[0], point[1]
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Contains dispatches on the geofence shape. Inactive or invalid geofences
// are filtered upstream by the registry and must not reach this function.
func Contains(point [2]float64, geofence *model.Geofence) bool {
	switch geofence.Shape.Type {
	case model.ShapeCircle:
		return PointInCircle(point, geofence.Shape.Center, geofence.Shape.RadiusMeters)
	case model.ShapePolygon:
		return PointInRing(point, geofence.Shape.Ring)
	default:
		return false
	}
}
