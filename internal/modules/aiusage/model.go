// README: Oracle usage quota, one row per caller per month.
package aiusage

import "errors"

// ErrQuotaExhausted is returned when a caller has no oracle calls left for the current month.
var ErrQuotaExhausted = errors.New("oracle quota exhausted")

// DefaultMonthlyCalls is the number of oracle calls granted per month.
const DefaultMonthlyCalls = 100

// monthLayout keys the lazy monthly reset.
const monthLayout = "2006-01"
