package utils

import (
	"math"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
)

const (
	// EarthRadiusMeters is the mean Earth radius.
	EarthRadiusMeters = 6371000

	// DefaultGeofenceRadiusMeters applies when no positive radius is configured.
	DefaultGeofenceRadiusMeters = 100
)

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// EquirectangularDistance approximates the distance between two points in meters.
// Accurate to well under a meter at geofence scale; not a geodesic for long ranges.
func EquirectangularDistance(a, b attendance.GeoPoint) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	x := toRadians(b.Longitude-a.Longitude) * math.Cos((lat1+lat2)/2)
	y := lat2 - lat1

	return math.Sqrt(x*x+y*y) * EarthRadiusMeters
}

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(a, b attendance.GeoPoint) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsInside reports whether point lies within radiusMeters of center.
// A nil center means the geofence is not configured and the answer is always false.
// The boundary is inclusive.
func IsInside(point attendance.GeoPoint, center *attendance.GeoPoint, radiusMeters float64) bool {
	if center == nil {
		return false
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultGeofenceRadiusMeters
	}
	return EquirectangularDistance(point, *center) <= radiusMeters
}
