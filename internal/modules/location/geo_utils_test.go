package location

import (
	"math"
	"testing"

	"goride/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			lat1:      12.9716, lng1: 77.5946,
			lat2:      12.9716, lng2: 77.5946,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "MG Road to Bangalore airport (~30km)",
			lat1:      12.9756, lng1: 77.6066,
			lat2:      13.1986, lng2: 77.7066,
			wantKm:    27.1,
			tolerance: 1.0,
		},
		{
			name:      "Bangalore to Mumbai (~845km)",
			lat1:      12.9716, lng1: 77.5946,
			lat2:      19.0760, lng2: 72.8777,
			wantKm:    845,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := types.Point{Lat: 12.0, Lng: 77.0}
	b := types.Point{Lat: 13.0, Lng: 78.0}
	if d1, d2 := DistanceKm(a, b), DistanceKm(b, a); math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}
