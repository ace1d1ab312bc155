package maps

import "testing"

func TestQuoteTrip(t *testing.T) {
	rates := []Rate{
		{RideType: "Bike", BaseFare: 25, PerKm: 8, MinFare: 40, PickupETA: 3},
		{RideType: "Cab", BaseFare: 60, PerKm: 22, MinFare: 120, PickupETA: 8},
	}

	tests := []struct {
		name       string
		distanceKm float64
		want       []int64
	}{
		{name: "minimum fare applies", distanceKm: 0.5, want: []int64{40, 120}},
		{name: "distance charge rounds up", distanceKm: 10.01, want: []int64{25 + 81, 60 + 221}},
		{name: "negative distance treated as zero", distanceKm: -3, want: []int64{40, 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := QuoteTrip(tt.distanceKm, rates)
			if len(quotes) != len(tt.want) {
				t.Fatalf("expected %d quotes, got %d", len(tt.want), len(quotes))
			}
			for i, q := range quotes {
				if !q.Valid() {
					t.Fatalf("quote %d invalid: %+v", i, q)
				}
				if *q.Price != tt.want[i] {
					t.Errorf("quote %d price = %d, want %d", i, *q.Price, tt.want[i])
				}
				if *q.Type != rates[i].RideType || *q.ETA != rates[i].PickupETA {
					t.Errorf("quote %d = %s/%d", i, *q.Type, *q.ETA)
				}
			}
		})
	}
}

func TestDefaultRatesCoverEveryCategory(t *testing.T) {
	rates := DefaultRates()
	if len(rates) != 4 {
		t.Fatalf("expected 4 rates, got %d", len(rates))
	}
	for _, r := range rates {
		if r.MinFare <= 0 || r.PerKm <= 0 || r.PickupETA <= 0 {
			t.Errorf("rate %s has non-positive fields: %+v", r.RideType, r)
		}
	}
}
