// Package backtest simulates a cash-plus-bond portfolio whose only growth
// driver is monthly interest at the prevailing government-bond rate.
package backtest

import "time"

// DailyValue is the portfolio value at the end of one calendar day.
type DailyValue struct {
	Date          time.Time `json:"date"`
	Value         float64   `json:"value"`
	ChangePercent float64   `json:"change_percent"` // vs previous day, 0 on the first day
}

// YearlyDetail rolls the daily series up to one calendar year.
type YearlyDetail struct {
	Year         int     `json:"year"`
	StartValue   float64 `json:"start_value"` // opening balance of the year's first simulated day
	EndValue     float64 `json:"end_value"`   // closing value of the year's last simulated day
	Return       float64 `json:"return"`      // percent
	CashInterest float64 `json:"cash_interest"`
}

// Result is produced once per simulation and never mutated afterwards.
type Result struct {
	StartDate        time.Time      `json:"start_date"`
	EndDate          time.Time      `json:"end_date"`
	InitialCapital   float64        `json:"initial_capital"`
	FinalValue       float64        `json:"final_value"`
	TotalReturn      float64        `json:"total_return"`      // percent
	AnnualizedReturn float64        `json:"annualized_return"` // percent
	MaxDrawdown      float64        `json:"max_drawdown"`      // percent, positive
	DailyValues      []DailyValue   `json:"daily_values"`
	YearlyDetails    []YearlyDetail `json:"yearly_details"`
}

// Values returns the daily value series.
func (r *Result) Values() []float64 {
	values := make([]float64, len(r.DailyValues))
	for i, dv := range r.DailyValues {
		values[i] = dv.Value
	}
	return values
}

// Request is the caller-facing input of a simulation.
type Request struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
}
