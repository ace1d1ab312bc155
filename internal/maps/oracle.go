package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"goride/internal/ai"
	"goride/internal/types"
)

const (
	searchRadiusMeters = 5000
	maxSuggestions     = 5
)

// Oracle implements ai.Oracle on top of the Google Maps Platform: Places text
// search for suggestions, the Geocoding API for reverse lookups, and the
// Directions API plus a rate card for fares.
type Oracle struct {
	client   *maps.Client
	rates    []Rate
	language string
	region   string
}

// NewOracle creates a maps-backed oracle with the given API key and the default rate card.
func NewOracle(apiKey string) (*Oracle, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Oracle{client: client, rates: DefaultRates(), language: "en", region: "IN"}, nil
}

var _ ai.Oracle = (*Oracle)(nil)

// Suggest searches for places matching query around near and returns up to five names.
func (o *Oracle) Suggest(ctx context.Context, query string, near types.Point) ([]string, error) {
	r := &maps.TextSearchRequest{
		Query:    query,
		Location: &maps.LatLng{Lat: near.Lat, Lng: near.Lng},
		Radius:   searchRadiusMeters,
		Language: o.language,
		Region:   o.region,
	}
	resp, err := o.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	seen := make(map[string]struct{}, len(resp.Results))
	var out []string
	for _, result := range resp.Results {
		name := strings.TrimSpace(result.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if len(out) >= maxSuggestions {
			break
		}
	}
	return out, nil
}

// ReverseGeocode returns the formatted address of the best geocoding match.
func (o *Oracle) ReverseGeocode(ctx context.Context, at types.Point) (string, error) {
	results, err := o.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Language: o.language,
		Region:   o.region,
	})
	if err != nil {
		return "", fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 || strings.TrimSpace(results[0].FormattedAddress) == "" {
		return "", fmt.Errorf("%w: no address for %v,%v", ai.ErrMalformedResponse, at.Lat, at.Lng)
	}
	return results[0].FormattedAddress, nil
}

// PriceFares routes pickup to dropoff by car and prices the distance with the rate card.
func (o *Oracle) PriceFares(ctx context.Context, pickup, dropoff string) ([]ai.FareQuote, error) {
	r := &maps.DirectionsRequest{
		Origin:      pickup,
		Destination: dropoff,
		Mode:        maps.TravelModeDriving,
		Language:    o.language,
		Region:      o.region,
	}

	routes, _, err := o.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: no route found", ai.ErrMalformedResponse)
	}

	leg := routes[0].Legs[0]
	return QuoteTrip(float64(leg.Distance.Meters)/1000.0, o.rates), nil
}
