package aiusage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles oracle_usage persistence.
type Store struct {
	db        *pgxpool.Pool
	allowance int
	now       func() time.Time
}

// NewStore returns a Store granting allowance calls per month. A non-positive
// allowance falls back to DefaultMonthlyCalls.
func NewStore(db *pgxpool.Pool, allowance int) *Store {
	if allowance <= 0 {
		allowance = DefaultMonthlyCalls
	}
	return &Store{db: db, allowance: allowance, now: time.Now}
}

// UseCall atomically checks the monthly quota and deducts one call.
// It resets the counter to the allowance when last_reset_month is behind the current month.
// Returns ErrQuotaExhausted when 0 rows are updated (quota exhausted or caller absent).
func (s *Store) UseCall(ctx context.Context, caller string) error {
	month := s.now().Format(monthLayout)

	tag, err := s.db.Exec(ctx, `
		UPDATE oracle_usage SET
			calls_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE calls_remaining - 1 END,
			last_reset_month = $1
		WHERE caller = $3 AND (last_reset_month < $1 OR calls_remaining > 0)
	`, month, s.allowance, caller)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExhausted
	}
	return nil
}

// EnsureCaller inserts a row for caller with a full allowance.
// An existing row is left untouched.
func (s *Store) EnsureCaller(ctx context.Context, caller string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO oracle_usage (caller, calls_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (caller) DO NOTHING
	`, caller, s.allowance, s.now().Format(monthLayout))
	return err
}

// Remaining reports the calls left for caller this month.
func (s *Store) Remaining(ctx context.Context, caller string) (int, error) {
	var remaining int
	var month string
	err := s.db.QueryRow(ctx,
		`SELECT calls_remaining, last_reset_month FROM oracle_usage WHERE caller = $1`, caller,
	).Scan(&remaining, &month)
	if err != nil {
		return 0, err
	}
	if month < s.now().Format(monthLayout) {
		return s.allowance, nil
	}
	return remaining, nil
}
