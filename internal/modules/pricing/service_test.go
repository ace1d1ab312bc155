package pricing

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"goride/internal/ai"
	"goride/internal/logging"
	"goride/internal/types"
)

type fareOracle struct {
	quotes  []ai.FareQuote
	err     error
	pickup  string
	dropoff string
}

func (f *fareOracle) Suggest(context.Context, string, types.Point) ([]string, error) {
	return nil, ai.ErrOracleUnavailable
}

func (f *fareOracle) ReverseGeocode(context.Context, types.Point) (string, error) {
	return "", ai.ErrOracleUnavailable
}

func (f *fareOracle) PriceFares(_ context.Context, pickup, dropoff string) ([]ai.FareQuote, error) {
	f.pickup, f.dropoff = pickup, dropoff
	return f.quotes, f.err
}

func TestClassify(t *testing.T) {
	tests := map[string]Category{
		"Bike":               CategoryBike,
		"MOTO taxi":          CategoryBike,
		"Auto (Rickshaw)":    CategoryAuto,
		"e-rickshaw":         CategoryAuto,
		"Premium":            CategoryPremium,
		"Luxury Sedan":       CategoryPremium,
		"Cab (Standard)":     CategoryCab,
		"Sedan":              CategoryCab,
		"":                   CategoryCab,
	}
	for in, want := range tests {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadCatalogNormalizes(t *testing.T) {
	o := &fareOracle{quotes: []ai.FareQuote{
		ai.Quote("Premium", 420, 11),
		ai.Quote("Bike", 70, 3),
		ai.Quote("Auto Rickshaw", 120, 6),
		ai.Quote("Sedan", 260, 9),
	}}
	got := NewLoader(o, logging.Discard()).LoadCatalog(context.Background(), "Current Location", "MG Road")

	if o.pickup != "Current Location" || o.dropoff != "MG Road" {
		t.Fatalf("oracle called with %q -> %q", o.pickup, o.dropoff)
	}
	want := []VehicleOption{
		{ID: "ride-0", Category: CategoryPremium, Name: "Premium", Fare: types.Money{Amount: 420, Currency: "₹"}, ETAMinutes: 11, Description: "Top rated drivers", Icon: "star"},
		{ID: "ride-1", Category: CategoryBike, Name: "Bike", Fare: types.Money{Amount: 70, Currency: "₹"}, ETAMinutes: 3, Description: "Beat the traffic", Icon: "bike"},
		{ID: "ride-2", Category: CategoryAuto, Name: "Auto Rickshaw", Fare: types.Money{Amount: 120, Currency: "₹"}, ETAMinutes: 6, Description: "Pocket friendly", Icon: "zap"},
		{ID: "ride-3", Category: CategoryCab, Name: "Sedan", Fare: types.Money{Amount: 260, Currency: "₹"}, ETAMinutes: 9, Description: "Standard ride", Icon: "car"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestLoadCatalogFallbacks(t *testing.T) {
	missingType := ai.FareQuote{Price: ptr(int64(90)), ETA: ptr(4)}
	tests := []struct {
		name   string
		oracle *fareOracle
	}{
		{"oracle error", &fareOracle{err: errors.New("deadline exceeded")}},
		{"malformed envelope", &fareOracle{err: ai.ErrMalformedResponse}},
		{"empty options", &fareOracle{quotes: []ai.FareQuote{}}},
		{"one entry missing type", &fareOracle{quotes: []ai.FareQuote{ai.Quote("Bike", 70, 3), missingType}}},
		{"entry missing price", &fareOracle{quotes: []ai.FareQuote{{Type: ptr("Auto"), ETA: ptr(4)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLoader(tt.oracle, logging.Discard()).LoadCatalog(context.Background(), "A", "B")
			if !reflect.DeepEqual(got, FallbackCatalog()) {
				t.Fatalf("expected fallback catalog, got %+v", got)
			}
		})
	}
}

func TestFallbackCatalog(t *testing.T) {
	cat := FallbackCatalog()
	wantNames := []string{"Moto", "Auto", "GoCab", "Premium"}
	wantPrices := []int64{65, 110, 240, 350}
	wantETAs := []int{3, 5, 8, 10}
	if len(cat) != 4 {
		t.Fatalf("expected 4 options, got %d", len(cat))
	}
	for i, v := range cat {
		if v.Name != wantNames[i] || v.Fare.Amount != wantPrices[i] || v.ETAMinutes != wantETAs[i] || v.Fare.Currency != "₹" {
			t.Errorf("option %d = %+v", i, v)
		}
	}
	cat[0].Name = "mutated"
	if FallbackCatalog()[0].Name != "Moto" {
		t.Fatal("fallback catalog must be a fresh copy")
	}
}

func ptr[T any](v T) *T { return &v }
