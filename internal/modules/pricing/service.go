// README: Catalog loader turns oracle fare quotes into a validated vehicle catalog.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"goride/internal/ai"
	"goride/internal/observability"
)

// Loader requests fare quotes and normalizes them into VehicleOptions.
type Loader struct {
	oracle ai.Oracle
	log    *slog.Logger
}

func NewLoader(oracle ai.Oracle, log *slog.Logger) *Loader {
	return &Loader{oracle: oracle, log: log}
}

// LoadCatalog prices a trip between two named places. It never fails: any
// oracle error, an empty answer, or a single malformed quote yields the
// fallback catalog.
func (l *Loader) LoadCatalog(ctx context.Context, pickup, dropoff string) []VehicleOption {
	quotes, err := l.oracle.PriceFares(ctx, pickup, dropoff)
	if err != nil {
		return l.fallback("fare request failed", err)
	}
	options, err := Normalize(quotes)
	if err != nil {
		return l.fallback("fare response rejected", err)
	}
	return options
}

func (l *Loader) fallback(msg string, err error) []VehicleOption {
	l.log.Warn(msg+", using fallback catalog", "error", err)
	observability.Fallbacks.WithLabelValues("catalog").Inc()
	return FallbackCatalog()
}

// Normalize validates every quote and maps it to a VehicleOption with ids
// ride-0, ride-1, ... in oracle order. The batch is rejected as a whole if
// it is empty or any quote is incomplete.
func Normalize(quotes []ai.FareQuote) ([]VehicleOption, error) {
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no fare options", ai.ErrMalformedResponse)
	}
	out := make([]VehicleOption, 0, len(quotes))
	for i, q := range quotes {
		if !q.Valid() {
			return nil, fmt.Errorf("%w: fare option %d is incomplete", ai.ErrMalformedResponse, i)
		}
		cat := Classify(*q.Type)
		p := profiles[cat]
		out = append(out, VehicleOption{
			ID:          fmt.Sprintf("ride-%d", i),
			Category:    cat,
			Name:        *q.Type,
			Fare:        moneyOf(*q.Price),
			ETAMinutes:  *q.ETA,
			Description: p.description,
			Icon:        p.icon,
		})
	}
	return out, nil
}

// Classify maps free-text category names onto a Category by keyword.
func Classify(kind string) Category {
	lower := strings.ToLower(kind)
	switch {
	case strings.Contains(lower, "bike") || strings.Contains(lower, "moto"):
		return CategoryBike
	case strings.Contains(lower, "auto") || strings.Contains(lower, "rickshaw"):
		return CategoryAuto
	case strings.Contains(lower, "premium") || strings.Contains(lower, "luxury"):
		return CategoryPremium
	default:
		return CategoryCab
	}
}
