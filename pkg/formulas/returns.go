package formulas

import "math"

// TotalReturnPercent returns (final/initial - 1) * 100.
func TotalReturnPercent(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final/initial - 1) * 100
}

// AnnualizedReturnPercent annualizes growth over a calendar-day span.
//
// Formula: ((final/initial)^(365/days) - 1) * 100
//
// days is the inclusive calendar-day count of the period. Short periods are
// not clamped, so a few days of growth annualize to large figures.
func AnnualizedReturnPercent(initial, final float64, days int) float64 {
	if initial <= 0 || days <= 0 {
		return 0
	}
	return (math.Pow(final/initial, 365.0/float64(days)) - 1) * 100
}

// ChangePercent returns the percentage change from previous to current.
func ChangePercent(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current/previous - 1) * 100
}
