package historical

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/database"
)

// Repository stores daily prices in history.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new price repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "historical").Logger(),
	}
}

// UpsertDaily writes bars for symbol, replacing existing days.
func (r *Repository) UpsertDaily(symbol string, prices []DailyPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO daily_prices (symbol, date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				volume = excluded.volume
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range prices {
			if _, err := stmt.Exec(symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
				return fmt.Errorf("failed to upsert %s price for %s: %w", symbol, p.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(prices), nil
}

// GetDailyPrices returns bars for symbol, newest first. limit <= 0 means all.
func (r *Repository) GetDailyPrices(symbol string, limit int) ([]DailyPrice, error) {
	query := "SELECT date, open, high, low, close, volume FROM daily_prices WHERE symbol = ? ORDER BY date DESC"
	args := []interface{}{symbol}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	prices := make([]DailyPrice, 0)
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetMonthlyPrices aggregates bars by calendar month, newest first.
// limit <= 0 means all.
func (r *Repository) GetMonthlyPrices(symbol string, limit int) ([]MonthlyPrice, error) {
	query := `
		SELECT substr(date, 1, 7) AS year_month, AVG(close), MAX(high), MIN(low), COUNT(*)
		FROM daily_prices
		WHERE symbol = ?
		GROUP BY year_month
		ORDER BY year_month DESC`
	args := []interface{}{symbol}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly prices: %w", err)
	}
	defer rows.Close()

	prices := make([]MonthlyPrice, 0)
	for rows.Next() {
		var p MonthlyPrice
		if err := rows.Scan(&p.YearMonth, &p.AvgClose, &p.High, &p.Low, &p.Days); err != nil {
			return nil, fmt.Errorf("failed to scan monthly price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Count returns the number of stored bars for symbol.
func (r *Repository) Count(symbol string) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM daily_prices WHERE symbol = ?", symbol).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count daily prices: %w", err)
	}
	return n, nil
}
