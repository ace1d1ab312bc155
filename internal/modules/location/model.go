// README: Location values produced by the resolver and assigned to booking slots.
package location

import (
	"errors"

	"goride/internal/types"
)

// Field identifies one of the two address slots of a booking.
type Field string

const (
	FieldNone    Field = ""
	FieldPickup  Field = "pickup"
	FieldDropoff Field = "dropoff"
)

// Valid reports whether f names a real slot.
func (f Field) Valid() bool {
	return f == FieldPickup || f == FieldDropoff
}

// Provenance records where a Location came from.
type Provenance string

const (
	ProvenanceCurrent  Provenance = "current"
	ProvenanceSelected Provenance = "selected"
)

const (
	// CurrentLocationName names the device-derived pickup.
	CurrentLocationName = "Current Location"
	// FetchingAddressName is the placeholder shown while a map tap is reverse-geocoded.
	FetchingAddressName = "Fetching address..."
)

// DefaultPosition is used when the device refuses to report a location (Bangalore).
var DefaultPosition = types.Point{Lat: 12.9716, Lng: 77.5946}

// ErrLocationDenied is returned by a Geolocator that has no fix to offer.
var ErrLocationDenied = errors.New("device location unavailable")

// Location is a named point. Values are replaced wholesale, never mutated.
type Location struct {
	Name       string      `json:"name"`
	Coords     types.Point `json:"coords"`
	Provenance Provenance  `json:"provenance"`
}

// IsPlaceholder reports whether the name is one of the sentinel values that must
// never be used as a search query.
func IsPlaceholder(name string) bool {
	return name == CurrentLocationName || name == FetchingAddressName
}
