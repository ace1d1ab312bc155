// README: Vehicle options offered on the ride selection screen.
package pricing

import "goride/internal/types"

// Category is the normalized ride class.
type Category string

const (
	CategoryBike    Category = "Bike"
	CategoryAuto    Category = "Auto"
	CategoryCab     Category = "Cab"
	CategoryPremium Category = "Premium"
)

// Currency is the display symbol for every fare.
const Currency = "₹"

// VehicleOption is one selectable ride. A catalog is replaced wholesale per
// fare request, never merged.
type VehicleOption struct {
	ID          string      `json:"id"`
	Category    Category    `json:"category"`
	Name        string      `json:"name"`
	Fare        types.Money `json:"fare"`
	ETAMinutes  int         `json:"etaMinutes"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
}

type profile struct {
	description string
	icon        string
}

var profiles = map[Category]profile{
	CategoryBike:    {description: "Beat the traffic", icon: "bike"},
	CategoryAuto:    {description: "Pocket friendly", icon: "zap"},
	CategoryCab:     {description: "Standard ride", icon: "car"},
	CategoryPremium: {description: "Top rated drivers", icon: "star"},
}

// FallbackCatalog is served whenever the oracle cannot price the trip.
func FallbackCatalog() []VehicleOption {
	return []VehicleOption{
		{ID: "1", Category: CategoryBike, Name: "Moto", Fare: types.Money{Amount: 65, Currency: Currency}, ETAMinutes: 3, Description: "Affordable, fast", Icon: "bike"},
		{ID: "2", Category: CategoryAuto, Name: "Auto", Fare: types.Money{Amount: 110, Currency: Currency}, ETAMinutes: 5, Description: "No bargaining", Icon: "zap"},
		{ID: "3", Category: CategoryCab, Name: "GoCab", Fare: types.Money{Amount: 240, Currency: Currency}, ETAMinutes: 8, Description: "Comfy sedan", Icon: "car"},
		{ID: "4", Category: CategoryPremium, Name: "Premium", Fare: types.Money{Amount: 350, Currency: Currency}, ETAMinutes: 10, Description: "Luxury rides", Icon: "star"},
	}
}

func moneyOf(amount int64) types.Money {
	return types.Money{Amount: amount, Currency: Currency}
}
