package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves place names through the Google Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// Ensure GoogleGeocoder implements Geocoder.
var _ Geocoder = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder creates a geocoder backed by the Google Maps client.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// ReverseGeocode returns the formatted address of the first geocoding
// result for the given point.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeocoderFailure, err)
	}

	if len(results) == 0 {
		return "", ErrLocationNotFound
	}

	return results[0].FormattedAddress, nil
}
