// Package fare computes ride fares from geographic coordinates.
package fare

import (
	"errors"
	"math"
)

const (
	earthRadiusKm = 6371.0

	// RatePerKm is the fixed per-kilometre rate, in the same unit as the
	// ledger's transfer currency.
	RatePerKm = 5.0
)

// ErrInvalidCoordinates is returned when a latitude/longitude pair is
// non-finite or out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

func (c Coordinate) valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Calculate returns the fare for a trip between pickup and destination:
// great-circle distance multiplied by RatePerKm. Pure and deterministic.
func Calculate(pickup, destination Coordinate) (float64, error) {
	if !pickup.valid() || !destination.valid() {
		return 0, ErrInvalidCoordinates
	}
	return DistanceKm(pickup, destination) * RatePerKm, nil
}

// DistanceKm returns the haversine great-circle distance in kilometres
// between two points. Inputs are assumed valid.
func DistanceKm(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
