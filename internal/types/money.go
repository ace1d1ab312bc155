// README: Common value objects shared across modules (money, points).
package types

// Money is an integer amount in the smallest display unit plus a currency symbol.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Point is a latitude/longitude pair in decimal degrees. Ranges are not enforced.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Offset returns p shifted by dLat/dLng degrees.
func (p Point) Offset(dLat, dLng float64) Point {
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}
