package maps

import (
	"math"

	"goride/internal/ai"
)

// Rate is the tariff for one ride category.
type Rate struct {
	RideType  string
	BaseFare  int64
	PerKm     int64
	MinFare   int64
	PickupETA int // minutes until a driver of this category arrives
}

// DefaultRates is a city tariff in rupees.
func DefaultRates() []Rate {
	return []Rate{
		{RideType: "Bike", BaseFare: 25, PerKm: 8, MinFare: 40, PickupETA: 3},
		{RideType: "Auto Rickshaw", BaseFare: 30, PerKm: 15, MinFare: 60, PickupETA: 5},
		{RideType: "Cab", BaseFare: 60, PerKm: 22, MinFare: 120, PickupETA: 8},
		{RideType: "Premium Sedan", BaseFare: 100, PerKm: 30, MinFare: 200, PickupETA: 10},
	}
}

// QuoteTrip prices a trip of distanceKm for each rate, rounding up to whole rupees.
func QuoteTrip(distanceKm float64, rates []Rate) []ai.FareQuote {
	if distanceKm < 0 {
		distanceKm = 0
	}
	out := make([]ai.FareQuote, 0, len(rates))
	for _, r := range rates {
		price := r.BaseFare + int64(math.Ceil(distanceKm*float64(r.PerKm)))
		if price < r.MinFare {
			price = r.MinFare
		}
		out = append(out, ai.Quote(r.RideType, price, r.PickupETA))
	}
	return out
}
