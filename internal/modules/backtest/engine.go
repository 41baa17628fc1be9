package backtest

import (
	"time"

	"github.com/aristath/yieldboard/internal/utils"
	"github.com/aristath/yieldboard/pkg/formulas"
)

// Engine runs the daily cash-plus-bond simulation. It holds no state between
// runs; every call to Simulate builds a fresh Result.
type Engine struct {
	rates RateSource
}

// NewEngine creates an engine that reads interest from rates.
func NewEngine(rates RateSource) *Engine {
	return &Engine{rates: rates}
}

// Simulate validates req and walks every calendar day from start to end
// inclusive.
func (e *Engine) Simulate(req Request) (*Result, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}

	if req.StartDate.Equal(req.EndDate) {
		return singleDay(req), nil
	}

	totalDays := utils.DaysInclusive(req.StartDate, req.EndDate)
	daily := make([]DailyValue, 0, totalDays)
	years := newYearTracker()
	schedule := newAccrualSchedule(e.rates)

	current := req.InitialCapital
	for i := 0; i < totalDays; i++ {
		day := req.StartDate.AddDate(0, 0, i)
		opening := i == 0
		closing := i == totalDays-1

		previous := current
		current += schedule.step(day, current, opening, closing)

		change := 0.0
		if !opening {
			change = formulas.ChangePercent(previous, current)
		}
		daily = append(daily, DailyValue{Date: day, Value: current, ChangePercent: change})
		years.observe(day, previous, current)
	}

	return buildResult(req, daily, years.finish()), nil
}

// singleDay is the degenerate range: one record equal to the capital.
func singleDay(req Request) *Result {
	daily := []DailyValue{{Date: req.StartDate, Value: req.InitialCapital}}
	years := []YearlyDetail{{
		Year:       req.StartDate.Year(),
		StartValue: req.InitialCapital,
		EndValue:   req.InitialCapital,
	}}
	return buildResult(req, daily, years)
}

func buildResult(req Request, daily []DailyValue, years []YearlyDetail) *Result {
	final := daily[len(daily)-1].Value
	result := &Result{
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		InitialCapital:   req.InitialCapital,
		FinalValue:       final,
		TotalReturn:      formulas.TotalReturnPercent(req.InitialCapital, final),
		AnnualizedReturn: formulas.AnnualizedReturnPercent(req.InitialCapital, final, len(daily)),
		DailyValues:      daily,
		YearlyDetails:    years,
	}
	if dd := formulas.CalculateMaxDrawdown(result.Values()); dd != nil {
		result.MaxDrawdown = *dd * 100
	}
	return result
}

// yearTracker closes a YearlyDetail whenever the walk crosses into a new
// calendar year, and once more at the end of the range.
type yearTracker struct {
	details []YearlyDetail
	open    *YearlyDetail
}

func newYearTracker() *yearTracker {
	return &yearTracker{}
}

// observe records a day's opening balance and closing value.
func (t *yearTracker) observe(day time.Time, opening, closing float64) {
	if t.open != nil && t.open.Year != day.Year() {
		t.close()
	}
	if t.open == nil {
		t.open = &YearlyDetail{Year: day.Year(), StartValue: opening}
	}
	t.open.EndValue = closing
}

func (t *yearTracker) close() {
	y := *t.open
	y.CashInterest = y.EndValue - y.StartValue
	y.Return = formulas.TotalReturnPercent(y.StartValue, y.EndValue)
	t.details = append(t.details, y)
	t.open = nil
}

func (t *yearTracker) finish() []YearlyDetail {
	if t.open != nil {
		t.close()
	}
	return t.details
}
