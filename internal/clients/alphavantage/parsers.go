package alphavantage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

func parseFloat64(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch s {
	case "", "None", "null", "-", ".":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt64 accepts plain integers as well as decimal and exponent forms.
func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	return int64(parseFloat64(s))
}

// parseDate parses YYYY-MM-DD as midnight UTC; the zero time on failure.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// isMissing reports whether a raw value stands for "no observation".
func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "." || s == "None" || s == "null"
}

func parseEconomicData(body []byte) (*EconomicData, error) {
	var raw struct {
		Name     string `json:"name"`
		Interval string `json:"interval"`
		Unit     string `json:"unit"`
		Data     []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse economic data: %w", err)
	}

	data := &EconomicData{
		Name:     raw.Name,
		Interval: raw.Interval,
		Unit:     raw.Unit,
		Data:     make([]EconomicDataPoint, 0, len(raw.Data)),
	}
	for _, point := range raw.Data {
		if isMissing(point.Value) {
			continue
		}
		date := parseDate(point.Date)
		if date.IsZero() {
			continue
		}
		data.Data = append(data.Data, EconomicDataPoint{Date: date, Value: parseFloat64(point.Value)})
	}
	return data, nil
}

func parseDailyTimeSeries(body []byte) ([]DailyPrice, error) {
	var raw struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse daily time series: %w", err)
	}
	if raw.Series == nil {
		return nil, fmt.Errorf("response has no daily time series")
	}

	prices := make([]DailyPrice, 0, len(raw.Series))
	for day, bar := range raw.Series {
		date := parseDate(day)
		if date.IsZero() {
			continue
		}
		prices = append(prices, DailyPrice{
			Date:   date,
			Open:   parseFloat64(bar["1. open"]),
			High:   parseFloat64(bar["2. high"]),
			Low:    parseFloat64(bar["3. low"]),
			Close:  parseFloat64(bar["4. close"]),
			Volume: parseInt64(bar["5. volume"]),
		})
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.After(prices[j].Date)
	})
	return prices, nil
}
