package aiusage

import (
	"context"
	"errors"
)

// Service meters oracle calls per caller. It satisfies ai.Quota.
type Service struct {
	store *Store
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// UseCall deducts one call from the caller's monthly allowance.
// If the caller row does not exist yet it is initialised and the call is immediately consumed.
// Returns ErrQuotaExhausted when the quota for the current month is used up.
func (s *Service) UseCall(ctx context.Context, caller string) error {
	err := s.store.UseCall(ctx, caller)
	if !errors.Is(err, ErrQuotaExhausted) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureCaller(ctx, caller); initErr != nil {
		return initErr
	}
	return s.store.UseCall(ctx, caller)
}

// Remaining reports how many calls caller has left this month.
func (s *Service) Remaining(ctx context.Context, caller string) (int, error) {
	return s.store.Remaining(ctx, caller)
}
