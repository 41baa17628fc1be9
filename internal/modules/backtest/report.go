package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aristath/yieldboard/internal/utils"
	"github.com/aristath/yieldboard/pkg/formulas"
)

// Report is the presentation form of a Result: dates as strings, money
// rounded to cents and percentages to four places.
type Report struct {
	RunID            string       `json:"run_id"`
	GeneratedAt      time.Time    `json:"generated_at"`
	StartDate        string       `json:"start_date"`
	EndDate          string       `json:"end_date"`
	Days             int          `json:"days"`
	InitialCapital   float64      `json:"initial_capital"`
	FinalValue       float64      `json:"final_value"`
	TotalReturn      float64      `json:"total_return"`
	AnnualizedReturn float64      `json:"annualized_return"`
	MaxDrawdown      float64      `json:"max_drawdown"`
	Volatility       float64      `json:"volatility"` // annualized, percent
	RateObservations int          `json:"rate_observations"`
	UsedFallbackRate bool         `json:"used_fallback_rate"`
	DailyValues      []ReportDay  `json:"daily_values"`
	YearlyDetails    []ReportYear `json:"yearly_details"`
}

// ReportDay is one daily value in a Report.
type ReportDay struct {
	Date          string  `json:"date"`
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"change_percent"`
}

// ReportYear is one yearly detail in a Report.
type ReportYear struct {
	Year         int     `json:"year"`
	StartValue   float64 `json:"start_value"`
	EndValue     float64 `json:"end_value"`
	Return       float64 `json:"return"`
	CashInterest float64 `json:"cash_interest"`
}

// NewReport rounds result for presentation. observations is the size of the
// rate history the simulation ran against.
func NewReport(result *Result, observations int) *Report {
	report := &Report{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		StartDate:        utils.FormatDate(result.StartDate),
		EndDate:          utils.FormatDate(result.EndDate),
		Days:             len(result.DailyValues),
		InitialCapital:   money(result.InitialCapital),
		FinalValue:       money(result.FinalValue),
		TotalReturn:      percent(result.TotalReturn),
		AnnualizedReturn: percent(result.AnnualizedReturn),
		MaxDrawdown:      percent(result.MaxDrawdown),
		Volatility:       percent(Volatility(result) * 100),
		RateObservations: observations,
		UsedFallbackRate: observations == 0,
		DailyValues:      make([]ReportDay, len(result.DailyValues)),
		YearlyDetails:    make([]ReportYear, len(result.YearlyDetails)),
	}

	for i, dv := range result.DailyValues {
		report.DailyValues[i] = ReportDay{
			Date:          utils.FormatDate(dv.Date),
			Value:         money(dv.Value),
			ChangePercent: percent(dv.ChangePercent),
		}
	}
	for i, y := range result.YearlyDetails {
		report.YearlyDetails[i] = ReportYear{
			Year:         y.Year,
			StartValue:   money(y.StartValue),
			EndValue:     money(y.EndValue),
			Return:       percent(y.Return),
			CashInterest: money(y.CashInterest),
		}
	}

	return report
}

// Volatility is the annualized standard deviation of daily value changes,
// as a fraction. Calendar days are used, so the scale factor is 365.
func Volatility(result *Result) float64 {
	return formulas.AnnualizedVolatility(formulas.CalculateReturns(result.Values()), 365)
}

func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func percent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
