// README: Location resolver turns device fixes, typed text and map taps into Locations.
package location

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"goride/internal/ai"
	"goride/internal/observability"
	"goride/internal/types"
)

// minQueryLen is the shortest query that may reach the oracle (exclusive).
const minQueryLen = 2

// selectionJitter is the full width, in degrees, of the random offset applied to
// a selected address around the context point.
const selectionJitter = 0.05

// Geolocator reports the device position.
type Geolocator interface {
	Locate(ctx context.Context) (types.Point, error)
}

// StaticGeolocator returns a fixed fix, or ErrLocationDenied when Fix is nil.
type StaticGeolocator struct {
	Fix *types.Point
}

func (g StaticGeolocator) Locate(context.Context) (types.Point, error) {
	if g.Fix == nil {
		return types.Point{}, ErrLocationDenied
	}
	return *g.Fix, nil
}

// Resolver wraps the oracle with the gating rules and deterministic fallbacks
// of the booking flow. None of its methods return oracle errors.
type Resolver struct {
	oracle ai.Oracle
	log    *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewResolver(oracle ai.Oracle, rng *rand.Rand, log *slog.Logger) *Resolver {
	return &Resolver{oracle: oracle, rng: rng, log: log}
}

// ResolveDevice asks the geolocator for a fix and falls back to DefaultPosition.
func (r *Resolver) ResolveDevice(ctx context.Context, g Geolocator) types.Point {
	if g == nil {
		return DefaultPosition
	}
	p, err := g.Locate(ctx)
	if err != nil {
		r.log.Warn("device location unavailable, using default", "error", err)
		observability.Fallbacks.WithLabelValues("device_location").Inc()
		return DefaultPosition
	}
	return p
}

// CurrentLocation names the device coordinates as the user's current location.
func CurrentLocation(at types.Point) Location {
	return Location{Name: CurrentLocationName, Coords: at, Provenance: ProvenanceCurrent}
}

// SuggestionsAllowed reports whether a search for query may reach the oracle:
// a field must be focused, the query must be longer than two characters, and
// it must not be a placeholder value.
func SuggestionsAllowed(active Field, query string) bool {
	if !active.Valid() {
		return false
	}
	if len([]rune(query)) <= minQueryLen {
		return false
	}
	return !IsPlaceholder(query)
}

// FallbackSuggestions derives four deterministic suggestions from the query.
func FallbackSuggestions(query string) []string {
	return []string{
		query + " Road",
		query + " Nagar",
		query + " Market",
		"New " + query,
	}
}

// FallbackAddress formats a coordinate to four decimals.
func FallbackAddress(at types.Point) string {
	return fmt.Sprintf("%.4f, %.4f", at.Lat, at.Lng)
}

// Suggest returns oracle suggestions for query near the context point, or the
// derived fallback list when the oracle fails.
func (r *Resolver) Suggest(ctx context.Context, query string, near types.Point) []string {
	out, err := r.oracle.Suggest(ctx, query, near)
	if err != nil {
		r.log.Warn("address suggestion failed, using fallback", "query", query, "error", err)
		observability.Fallbacks.WithLabelValues("suggestions").Inc()
		return FallbackSuggestions(query)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Placeholder is the optimistic Location written to a slot on a map tap.
func Placeholder(at types.Point) Location {
	return Location{Name: FetchingAddressName, Coords: at, Provenance: ProvenanceSelected}
}

// ResolveTap reverse-geocodes a tapped coordinate into the confirmed Location.
func (r *Resolver) ResolveTap(ctx context.Context, at types.Point) Location {
	name, err := r.oracle.ReverseGeocode(ctx, at)
	if err != nil {
		r.log.Warn("reverse geocode failed, using coordinates", "lat", at.Lat, "lng", at.Lng, "error", err)
		observability.Fallbacks.WithLabelValues("reverse_geocode").Inc()
		name = FallbackAddress(at)
	}
	return Location{Name: name, Coords: at, Provenance: ProvenanceSelected}
}

// TargetField picks the slot a map tap writes to: the focused field if any,
// else dropoff when pickup is already set, else pickup.
func TargetField(active Field, pickupSet bool) Field {
	if active.Valid() {
		return active
	}
	if pickupSet {
		return FieldDropoff
	}
	return FieldPickup
}

// FromSelection places a chosen suggestion at a random point within ±0.025
// degrees of near on each axis. This stands in for forward geocoding.
func (r *Resolver) FromSelection(address string, near types.Point) Location {
	r.mu.Lock()
	dLat := (r.rng.Float64() - 0.5) * selectionJitter
	dLng := (r.rng.Float64() - 0.5) * selectionJitter
	r.mu.Unlock()

	return Location{Name: address, Coords: near.Offset(dLat, dLng), Provenance: ProvenanceSelected}
}
