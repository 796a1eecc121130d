// Package geocode resolves coordinates to human-readable place names.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrLocationNotFound is returned when no place matches the coordinates.
	ErrLocationNotFound = errors.New("location not found")

	// ErrGeocoderFailure is returned when the geocoding backend fails.
	ErrGeocoderFailure = errors.New("geocoder failed")
)

// Geocoder resolves a latitude/longitude pair to a place name.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
