package ai

import (
	"context"
	"errors"

	"goride/internal/types"
)

var (
	// ErrOracleUnavailable is returned when no oracle backend is configured or reachable.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrMalformedResponse is returned when the oracle answered with data that does
	// not match the expected shape.
	ErrMalformedResponse = errors.New("malformed oracle response")
)

// Oracle is the address and fare generation service consumed by the booking flow.
// Every method may fail; callers substitute deterministic fallbacks.
type Oracle interface {
	// Suggest returns address or landmark names matching query near the given point.
	Suggest(ctx context.Context, query string, near types.Point) ([]string, error)

	// ReverseGeocode returns a short human-readable address for a coordinate.
	ReverseGeocode(ctx context.Context, at types.Point) (string, error)

	// PriceFares returns one quote per ride category for a trip between two named places.
	PriceFares(ctx context.Context, pickup, dropoff string) ([]FareQuote, error)
}

// Unavailable is an Oracle that always fails. It backs offline mode, where the
// booking flow runs entirely on fallback data.
type Unavailable struct{}

func (Unavailable) Suggest(context.Context, string, types.Point) ([]string, error) {
	return nil, ErrOracleUnavailable
}

func (Unavailable) ReverseGeocode(context.Context, types.Point) (string, error) {
	return "", ErrOracleUnavailable
}

func (Unavailable) PriceFares(context.Context, string, string) ([]FareQuote, error) {
	return nil, ErrOracleUnavailable
}

type callerKey struct{}

// WithCaller tags ctx with the user on whose behalf oracle calls are made.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by WithCaller, or "anonymous".
func CallerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey{}).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}
