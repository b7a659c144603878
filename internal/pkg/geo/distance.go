// Package geo computes great-circle distances on a spherical Earth.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0

	degToRad = math.Pi / 180
)

// HaversineMeters returns the great-circle distance in meters between two
// points given in decimal degrees.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// RoundedMeters is HaversineMeters rounded half away from zero to whole meters.
// Two distances are treated as tied only when their rounded values are equal.
func RoundedMeters(lat1, lng1, lat2, lng2 float64) int64 {
	return int64(math.Round(HaversineMeters(lat1, lng1, lat2, lng2)))
}
