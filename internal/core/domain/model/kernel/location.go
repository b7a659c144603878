package kernel

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/geo"
	"fulfillment/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is a WGS84 coordinate in decimal degrees. It is an immutable
// value object; the zero value is invalid.
//
// Example:
//
//	pickup, err := kernel.NewLocation(6.9271, 79.8612)
//	if err != nil {
//	    return err
//	}
//	meters, _ := pickup.DistanceTo(dropoff)
type Location struct { //nolint:recvcheck // pointer receivers are used only by the private setters
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation validates latitude in [-90, 90] and longitude in [-180, 180].
// NaN and infinities are out of range.
// Both violations are reported together.
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate fails for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in decimal degrees.
func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lng)
}

// IsEqual compares coordinates of two constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lng == other.lng, nil
}

// DistanceTo returns the haversine distance in meters to other.
func (l Location) DistanceTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return geo.HaversineMeters(l.lat, l.lng, other.lat, other.lng), nil
}

// RoundedDistanceTo returns the distance to other in whole meters.
// The selector compares these values, so equal results are ties.
func (l Location) RoundedDistanceTo(other Location) (int64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return geo.RoundedMeters(l.lat, l.lng, other.lat, other.lng), nil
}

func (l *Location) setLat(lat float64) error {
	if !(lat >= MinLatitude && lat <= MaxLatitude) { // also rejects NaN
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if !(lng >= MinLongitude && lng <= MaxLongitude) {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	l.lng = lng
	return nil
}
