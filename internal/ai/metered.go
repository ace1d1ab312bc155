package ai

import (
	"context"
	"fmt"

	"goride/internal/types"
)

// Quota deducts one oracle call from a caller's allowance.
type Quota interface {
	UseCall(ctx context.Context, caller string) error
}

// Metered charges every oracle call against the caller's quota before
// delegating. An exhausted quota surfaces as an error, which the booking flow
// degrades to fallback data like any other oracle failure.
type Metered struct {
	next  Oracle
	quota Quota
}

func NewMetered(next Oracle, quota Quota) *Metered {
	return &Metered{next: next, quota: quota}
}

func (m *Metered) Suggest(ctx context.Context, query string, near types.Point) ([]string, error) {
	if err := m.charge(ctx); err != nil {
		return nil, err
	}
	return m.next.Suggest(ctx, query, near)
}

func (m *Metered) ReverseGeocode(ctx context.Context, at types.Point) (string, error) {
	if err := m.charge(ctx); err != nil {
		return "", err
	}
	return m.next.ReverseGeocode(ctx, at)
}

func (m *Metered) PriceFares(ctx context.Context, pickup, dropoff string) ([]FareQuote, error) {
	if err := m.charge(ctx); err != nil {
		return nil, err
	}
	return m.next.PriceFares(ctx, pickup, dropoff)
}

func (m *Metered) charge(ctx context.Context) error {
	if err := m.quota.UseCall(ctx, CallerFrom(ctx)); err != nil {
		return fmt.Errorf("oracle quota: %w", err)
	}
	return nil
}
