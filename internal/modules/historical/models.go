// Package historical stores and serves daily price history for securities.
package historical

// DailyPrice is one daily bar. Date is YYYY-MM-DD.
type DailyPrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MonthlyPrice aggregates the daily bars of one calendar month.
type MonthlyPrice struct {
	YearMonth string  `json:"year_month"` // YYYY-MM
	AvgClose  float64 `json:"avg_close"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Days      int     `json:"days"`
}
