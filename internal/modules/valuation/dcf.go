// Package valuation provides discounted cash flow valuation.
package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxYears bounds the explicit projection horizon
const MaxYears = 50

var (
	// ErrInvalidYears is returned when the projection horizon is outside 1..MaxYears.
	ErrInvalidYears = errors.New("years must be between 1 and 50")
	// ErrDiscountBelowGrowth is returned when the discount rate does not exceed terminal growth.
	ErrDiscountBelowGrowth = errors.New("discount rate must be greater than terminal growth rate")
	// ErrInvalidInput is returned for rates at or below -100% and non-finite numbers.
	ErrInvalidInput = errors.New("invalid valuation input")
)

// DCFRequest describes a cash flow projection
type DCFRequest struct {
	BaseCashFlow       float64 `json:"base_cash_flow"` // Free cash flow of the year before the first projected year
	GrowthRate         float64 `json:"growth_rate"`
	DiscountRate       float64 `json:"discount_rate"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	Years              int     `json:"years"`
	NetDebt            float64 `json:"net_debt,omitempty"`
	SharesOutstanding  float64 `json:"shares_outstanding,omitempty"`
}

// DCFYear is one projected year
type DCFYear struct {
	Year           int     `json:"year"`
	CashFlow       float64 `json:"cash_flow"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// DCFResult is the valuation breakdown
type DCFResult struct {
	Years                []DCFYear `json:"years"`
	SumPresentValue      float64   `json:"sum_present_value"`
	TerminalValue        float64   `json:"terminal_value"`
	TerminalPresentValue float64   `json:"terminal_present_value"`
	EnterpriseValue      float64   `json:"enterprise_value"`
	EquityValue          float64   `json:"equity_value"`
	ValuePerShare        *float64  `json:"value_per_share,omitempty"`
	TerminalShare        float64   `json:"terminal_share"` // Fraction of enterprise value from the terminal value
}

// Validate checks the request
func (r DCFRequest) Validate() error {
	if r.Years < 1 || r.Years > MaxYears {
		return ErrInvalidYears
	}
	for name, v := range map[string]float64{
		"base_cash_flow":       r.BaseCashFlow,
		"growth_rate":          r.GrowthRate,
		"discount_rate":        r.DiscountRate,
		"terminal_growth_rate": r.TerminalGrowthRate,
		"net_debt":             r.NetDebt,
		"shares_outstanding":   r.SharesOutstanding,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
		}
	}
	if r.GrowthRate <= -1 || r.DiscountRate <= -1 || r.TerminalGrowthRate <= -1 {
		return fmt.Errorf("%w: rates must be greater than -1", ErrInvalidInput)
	}
	if r.SharesOutstanding < 0 {
		return fmt.Errorf("%w: shares outstanding must not be negative", ErrInvalidInput)
	}
	if r.DiscountRate <= r.TerminalGrowthRate {
		return ErrDiscountBelowGrowth
	}
	return nil
}

// IsValidationError reports whether err came from request validation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidYears) ||
		errors.Is(err, ErrDiscountBelowGrowth) ||
		errors.Is(err, ErrInvalidInput)
}

// DCF values the request: the present value of each projected cash flow plus
// a Gordon growth terminal value discounted from the final year. Arithmetic
// is done in decimal and every reported amount is rounded to 2 dp.
func DCF(req DCFRequest) (*DCFResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	growth := one.Add(decimal.NewFromFloat(req.GrowthRate))
	discount := one.Add(decimal.NewFromFloat(req.DiscountRate))

	cashFlow := decimal.NewFromFloat(req.BaseCashFlow)
	factor := one
	sum := decimal.Zero

	result := &DCFResult{Years: make([]DCFYear, 0, req.Years)}
	for year := 1; year <= req.Years; year++ {
		cashFlow = cashFlow.Mul(growth)
		factor = factor.Mul(discount)
		pv := cashFlow.Div(factor)
		sum = sum.Add(pv)

		result.Years = append(result.Years, DCFYear{
			Year:           year,
			CashFlow:       money(cashFlow),
			DiscountFactor: factor.Round(6).InexactFloat64(),
			PresentValue:   money(pv),
		})
	}

	terminalGrowth := decimal.NewFromFloat(req.TerminalGrowthRate)
	spread := decimal.NewFromFloat(req.DiscountRate).Sub(terminalGrowth)
	terminal := cashFlow.Mul(one.Add(terminalGrowth)).Div(spread)
	terminalPV := terminal.Div(factor)

	enterprise := sum.Add(terminalPV)
	equity := enterprise.Sub(decimal.NewFromFloat(req.NetDebt))

	result.SumPresentValue = money(sum)
	result.TerminalValue = money(terminal)
	result.TerminalPresentValue = money(terminalPV)
	result.EnterpriseValue = money(enterprise)
	result.EquityValue = money(equity)
	if !enterprise.IsZero() {
		result.TerminalShare = terminalPV.Div(enterprise).Round(4).InexactFloat64()
	}
	if req.SharesOutstanding > 0 {
		perShare := money(equity.Div(decimal.NewFromFloat(req.SharesOutstanding)))
		result.ValuePerShare = &perShare
	}

	return result, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
