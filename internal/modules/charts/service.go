// Package charts provides services for generating chart data from simulation
// results and historical prices.
package charts

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/modules/backtest"
	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/internal/utils"
	"github.com/aristath/yieldboard/pkg/formulas"
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"` // YYYY-MM-DD, YYYY-W## or YYYY-MM
	Value float64 `json:"value"`
}

// SecurityChart is a close-price series with an optional moving average.
type SecurityChart struct {
	Symbol    string           `json:"symbol"`
	Prices    []ChartDataPoint `json:"prices"`
	SMA       []ChartDataPoint `json:"sma,omitempty"`
	SMALength int              `json:"sma_length,omitempty"`
}

// PriceReader reads stored daily prices, newest first.
type PriceReader interface {
	GetDailyPrices(symbol string, limit int) ([]historical.DailyPrice, error)
}

// Service provides chart data operations
type Service struct {
	prices PriceReader
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new charts service
func NewService(prices PriceReader, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		now:    time.Now,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// BacktestChart groups a simulated value series by "day", "week" or "month".
// Each week or month is represented by its closing value, labelled with the
// ISO week (YYYY-W##) or the month (YYYY-MM).
func (s *Service) BacktestChart(daily []backtest.DailyValue, groupBy string) ([]ChartDataPoint, error) {
	var label func(time.Time) string
	switch groupBy {
	case "", "day":
		label = utils.FormatDate
	case "week":
		label = func(t time.Time) string {
			year, week := t.ISOWeek()
			return fmt.Sprintf("%d-W%02d", year, week)
		}
	case "month":
		label = func(t time.Time) string { return t.Format("2006-01") }
	default:
		return nil, fmt.Errorf("invalid group_by: %s (must be day, week or month)", groupBy)
	}

	points := make([]ChartDataPoint, 0, len(daily))
	for _, dv := range daily {
		period := label(dv.Date)
		// Values arrive in date order, so the last one seen closes the period.
		if n := len(points); n > 0 && points[n-1].Time == period {
			points[n-1].Value = dv.Value
			continue
		}
		points = append(points, ChartDataPoint{Time: period, Value: dv.Value})
	}
	return points, nil
}

// GetSecurityChart returns close prices for symbol over dateRange (1M, 3M,
// 6M, 1Y, 5Y, 10Y or all), oldest first. A smaLength above 1 adds a simple
// moving average computed over the same window.
func (s *Service) GetSecurityChart(symbol, dateRange string, smaLength int) (*SecurityChart, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	startDate, err := s.parseDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	dailyPrices, err := s.prices.GetDailyPrices(symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}

	// dailyPrices is newest first; charts want oldest first
	chart := &SecurityChart{Symbol: symbol, Prices: make([]ChartDataPoint, 0, len(dailyPrices))}
	for i := len(dailyPrices) - 1; i >= 0; i-- {
		p := dailyPrices[i]
		if startDate != "" && p.Date < startDate {
			continue
		}
		chart.Prices = append(chart.Prices, ChartDataPoint{Time: p.Date, Value: p.Close})
	}

	if smaLength > 1 {
		closes := make([]float64, len(chart.Prices))
		for i, p := range chart.Prices {
			closes[i] = p.Value
		}
		sma := formulas.SMASeries(closes, smaLength)
		chart.SMALength = smaLength
		chart.SMA = make([]ChartDataPoint, len(sma))
		for i, v := range sma {
			chart.SMA[i] = ChartDataPoint{Time: chart.Prices[i+smaLength-1].Time, Value: v}
		}
	}

	s.log.Debug().Str("symbol", symbol).Int("points", len(chart.Prices)).Msg("Built security chart")
	return chart, nil
}

// parseDateRange converts a range string to an inclusive start date.
// "all" and "" mean no lower bound.
func (s *Service) parseDateRange(rangeStr string) (string, error) {
	now := s.now()
	var start time.Time

	switch rangeStr {
	case "", "all":
		return "", nil
	case "1M":
		start = now.AddDate(0, -1, 0)
	case "3M":
		start = now.AddDate(0, -3, 0)
	case "6M":
		start = now.AddDate(0, -6, 0)
	case "1Y":
		start = now.AddDate(-1, 0, 0)
	case "5Y":
		start = now.AddDate(-5, 0, 0)
	case "10Y":
		start = now.AddDate(-10, 0, 0)
	default:
		return "", fmt.Errorf("invalid range: %s", rangeStr)
	}

	return utils.FormatDate(start), nil
}
