package alphavantage

import "time"

// EconomicData is a time series returned by the economic indicator endpoints.
// Points are ordered as the API returns them, newest first.
type EconomicData struct {
	Name     string              `json:"name"`
	Interval string              `json:"interval"`
	Unit     string              `json:"unit"`
	Data     []EconomicDataPoint `json:"data"`
}

// EconomicDataPoint is one observation of an indicator.
type EconomicDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DailyPrice is one bar from TIME_SERIES_DAILY.
type DailyPrice struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// CacheTTL configures how long responses stay in the in-memory cache.
type CacheTTL struct {
	PriceData          time.Duration
	EconomicIndicators time.Duration
}

// DefaultCacheTTL returns the default cache durations.
func DefaultCacheTTL() CacheTTL {
	return CacheTTL{
		PriceData:          15 * time.Minute,
		EconomicIndicators: 24 * time.Hour,
	}
}
