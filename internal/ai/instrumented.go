package ai

import (
	"context"
	"time"

	"goride/internal/observability"
	"goride/internal/types"
)

// Instrumented records call counts and latency for every oracle operation.
type Instrumented struct {
	next Oracle
}

func NewInstrumented(next Oracle) *Instrumented {
	return &Instrumented{next: next}
}

func (o *Instrumented) Suggest(ctx context.Context, query string, near types.Point) ([]string, error) {
	defer observe("suggest", time.Now())
	out, err := o.next.Suggest(ctx, query, near)
	count("suggest", err)
	return out, err
}

func (o *Instrumented) ReverseGeocode(ctx context.Context, at types.Point) (string, error) {
	defer observe("reverse_geocode", time.Now())
	out, err := o.next.ReverseGeocode(ctx, at)
	count("reverse_geocode", err)
	return out, err
}

func (o *Instrumented) PriceFares(ctx context.Context, pickup, dropoff string) ([]FareQuote, error) {
	defer observe("price_fares", time.Now())
	out, err := o.next.PriceFares(ctx, pickup, dropoff)
	count("price_fares", err)
	return out, err
}

func observe(op string, start time.Time) {
	observability.OracleLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func count(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.OracleCalls.WithLabelValues(op, outcome).Inc()
}
