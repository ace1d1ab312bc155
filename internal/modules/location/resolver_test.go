package location

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"goride/internal/ai"
	"goride/internal/logging"
	"goride/internal/types"
)

type stubOracle struct {
	suggestions []string
	address     string
	err         error
	calls       int
}

func (s *stubOracle) Suggest(context.Context, string, types.Point) ([]string, error) {
	s.calls++
	return s.suggestions, s.err
}

func (s *stubOracle) ReverseGeocode(context.Context, types.Point) (string, error) {
	s.calls++
	return s.address, s.err
}

func (s *stubOracle) PriceFares(context.Context, string, string) ([]ai.FareQuote, error) {
	return nil, ai.ErrOracleUnavailable
}

func newTestResolver(o ai.Oracle) *Resolver {
	return NewResolver(o, rand.New(rand.NewSource(7)), logging.Discard())
}

func TestSuggestionsAllowed(t *testing.T) {
	tests := []struct {
		name   string
		active Field
		query  string
		want   bool
	}{
		{"no focused field", FieldNone, "MG Road", false},
		{"two characters", FieldPickup, "MG", false},
		{"three characters", FieldPickup, "MGR", true},
		{"current location placeholder", FieldPickup, CurrentLocationName, false},
		{"fetching placeholder", FieldDropoff, FetchingAddressName, false},
		{"multibyte counted as runes", FieldDropoff, "बं", false},
		{"dropoff query", FieldDropoff, "Indiranagar", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestionsAllowed(tt.active, tt.query); got != tt.want {
				t.Errorf("SuggestionsAllowed(%q, %q) = %v, want %v", tt.active, tt.query, got, tt.want)
			}
		})
	}
}

func TestSuggestReturnsOracleResults(t *testing.T) {
	o := &stubOracle{suggestions: []string{"MG Road Metro", "MG Road Boulevard"}}
	got := newTestResolver(o).Suggest(context.Background(), "MG Road", DefaultPosition)
	if strings.Join(got, "|") != "MG Road Metro|MG Road Boulevard" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestSuggestFallbackOnFailure(t *testing.T) {
	o := &stubOracle{err: errors.New("boom")}
	got := newTestResolver(o).Suggest(context.Background(), "Jaya", DefaultPosition)
	want := []string{"Jaya Road", "Jaya Nagar", "Jaya Market", "New Jaya"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSuggestEmptyResultIsNotNil(t *testing.T) {
	got := newTestResolver(&stubOracle{}).Suggest(context.Background(), "Nowhere", DefaultPosition)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestResolveTap(t *testing.T) {
	at := types.Point{Lat: 12.97161234, Lng: 77.59469876}

	ok := newTestResolver(&stubOracle{address: "Cubbon Park"}).ResolveTap(context.Background(), at)
	if ok.Name != "Cubbon Park" || ok.Coords != at || ok.Provenance != ProvenanceSelected {
		t.Fatalf("unexpected location: %+v", ok)
	}

	failed := newTestResolver(&stubOracle{err: ai.ErrOracleUnavailable}).ResolveTap(context.Background(), at)
	if failed.Name != "12.9716, 77.5947" {
		t.Fatalf("unexpected fallback name %q", failed.Name)
	}
}

func TestPlaceholderAndCurrent(t *testing.T) {
	p := Placeholder(DefaultPosition)
	if p.Name != FetchingAddressName || p.Provenance != ProvenanceSelected {
		t.Fatalf("unexpected placeholder: %+v", p)
	}
	c := CurrentLocation(DefaultPosition)
	if c.Name != CurrentLocationName || c.Provenance != ProvenanceCurrent || c.Coords != DefaultPosition {
		t.Fatalf("unexpected current location: %+v", c)
	}
}

func TestTargetField(t *testing.T) {
	tests := []struct {
		active    Field
		pickupSet bool
		want      Field
	}{
		{FieldDropoff, false, FieldDropoff},
		{FieldPickup, true, FieldPickup},
		{FieldNone, true, FieldDropoff},
		{FieldNone, false, FieldPickup},
	}
	for _, tt := range tests {
		if got := TargetField(tt.active, tt.pickupSet); got != tt.want {
			t.Errorf("TargetField(%q, %v) = %q, want %q", tt.active, tt.pickupSet, got, tt.want)
		}
	}
}

func TestFromSelectionJitterBounds(t *testing.T) {
	r := newTestResolver(&stubOracle{})
	near := DefaultPosition
	for i := 0; i < 500; i++ {
		loc := r.FromSelection("MG Road", near)
		if loc.Name != "MG Road" || loc.Provenance != ProvenanceSelected {
			t.Fatalf("unexpected location: %+v", loc)
		}
		if math.Abs(loc.Coords.Lat-near.Lat) > 0.025 || math.Abs(loc.Coords.Lng-near.Lng) > 0.025 {
			t.Fatalf("jitter out of bounds: %+v", loc.Coords)
		}
	}
}

func TestResolveDevice(t *testing.T) {
	r := newTestResolver(&stubOracle{})
	fix := types.Point{Lat: 28.6139, Lng: 77.2090}

	if got := r.ResolveDevice(context.Background(), StaticGeolocator{Fix: &fix}); got != fix {
		t.Fatalf("expected device fix, got %+v", got)
	}
	if got := r.ResolveDevice(context.Background(), StaticGeolocator{}); got != DefaultPosition {
		t.Fatalf("expected default position, got %+v", got)
	}
	if got := r.ResolveDevice(context.Background(), nil); got != DefaultPosition {
		t.Fatalf("expected default position for nil geolocator, got %+v", got)
	}
}
