// Package clientdata persists provider responses in client_data.db so a
// restart, or a provider outage, does not cost another API call.
//
// Each row is one JSON document with an expires_at unix timestamp. Fresh rows
// answer requests directly; expired rows are kept until cleanup so callers can
// fall back to them when the provider fails.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Table is a cache table and the column its rows are keyed by.
type Table struct {
	Name string
	Key  string
}

var (
	// EconomicIndicators holds TREASURY_YIELD responses keyed by request.
	EconomicIndicators = Table{Name: "alphavantage_economic", Key: "indicator"}
	// DailyPrices holds TIME_SERIES_DAILY responses keyed by symbol and size.
	DailyPrices = Table{Name: "alphavantage_daily", Key: "symbol"}
)

// Tables is every table in client_data.db.
var Tables = []Table{EconomicIndicators, DailyPrices}

// Repository reads and writes cached responses.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a repository over an open client_data.db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Table names are interpolated into SQL, so only the declared ones pass.
func checkTable(t Table) error {
	for _, known := range Tables {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("unknown client data table %q", t.Name)
}

// Store upserts data under key, expiring ttl from now.
func (r *Repository) Store(t Table, key string, data interface{}, ttl time.Duration) error {
	if err := checkTable(t); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", t.Name, key, err)
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s, data, expires_at) VALUES (?, ?, ?)", t.Name, t.Key)
	if _, err := r.db.Exec(query, key, string(payload), r.now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", t.Name, key, err)
	}
	return nil
}

// GetIfFresh returns the entry for key if it has not expired, nil otherwise.
func (r *Repository) GetIfFresh(t Table, key string) (json.RawMessage, error) {
	return r.lookup(t, key, true)
}

// Get returns the entry for key even if it has expired, nil if there is none.
func (r *Repository) Get(t Table, key string) (json.RawMessage, error) {
	return r.lookup(t, key, false)
}

func (r *Repository) lookup(t Table, key string, freshOnly bool) (json.RawMessage, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data, expires_at FROM %s WHERE %s = ?", t.Name, t.Key)

	var (
		data      string
		expiresAt int64
	)
	err := r.db.QueryRow(query, key).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", t.Name, key, err)
	}
	if freshOnly && expiresAt <= r.now().Unix() {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// Delete drops the entry for key. A missing key is not an error.
func (r *Repository) Delete(t Table, key string) error {
	if err := checkTable(t); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Name, t.Key)
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", t.Name, key, err)
	}
	return nil
}

// DeleteExpired drops every expired row of t and returns how many went.
func (r *Repository) DeleteExpired(t Table) (int64, error) {
	if err := checkTable(t); err != nil {
		return 0, err
	}

	result, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", t.Name), r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge %s: %w", t.Name, err)
	}
	return result.RowsAffected()
}

// DeleteAllExpired purges every table, keyed by table name in the result.
// It stops at the first failing table.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	purged := make(map[string]int64, len(Tables))
	for _, t := range Tables {
		n, err := r.DeleteExpired(t)
		if err != nil {
			return purged, err
		}
		purged[t.Name] = n
	}
	return purged, nil
}
