package ai

// FareQuote is one priced ride category as returned by the oracle.
// Fields are pointers because the payload is untrusted: a nil field means the
// key was absent and the quote must be treated as malformed.
type FareQuote struct {
	// Type is the free-text category name (e.g. "Bike", "Auto Rickshaw", "Sedan").
	Type *string `json:"type"`

	// Price is the fare as an integer amount in rupees.
	Price *int64 `json:"price"`

	// ETA is the driver arrival estimate in minutes.
	ETA *int `json:"eta"`
}

// Valid reports whether every field is present and non-negative.
func (q FareQuote) Valid() bool {
	return q.Type != nil && *q.Type != "" &&
		q.Price != nil && *q.Price >= 0 &&
		q.ETA != nil && *q.ETA >= 0
}

// Quote builds a well-formed FareQuote.
func Quote(kind string, price int64, eta int) FareQuote {
	return FareQuote{Type: &kind, Price: &price, ETA: &eta}
}
