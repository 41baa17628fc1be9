package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/yieldboard/internal/utils"
)

var (
	// ErrInvalidDateRange is returned when the start date is after the end date.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	// ErrInvalidCapital is returned for non-positive or non-finite initial capital.
	ErrInvalidCapital = errors.New("initial capital must be a positive number")
)

// Validate normalizes the request dates and rejects invalid input before any
// simulation work starts.
func (r Request) Validate() (Request, error) {
	r.StartDate = utils.NormalizeDate(r.StartDate)
	r.EndDate = utils.NormalizeDate(r.EndDate)

	if r.StartDate.After(r.EndDate) {
		return r, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			utils.FormatDate(r.StartDate), utils.FormatDate(r.EndDate))
	}
	if r.InitialCapital <= 0 || math.IsNaN(r.InitialCapital) || math.IsInf(r.InitialCapital, 0) {
		return r, fmt.Errorf("%w: %v", ErrInvalidCapital, r.InitialCapital)
	}
	return r, nil
}

// IsValidationError reports whether err was caused by invalid request input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) || errors.Is(err, ErrInvalidCapital)
}
