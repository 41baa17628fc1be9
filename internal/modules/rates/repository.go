package rates

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/yieldboard/internal/database"
	"github.com/aristath/yieldboard/internal/utils"
	"github.com/rs/zerolog"
)

// Repository stores rate observations in history.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new rate repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "rates").Logger(),
	}
}

// Upsert inserts or replaces observations of a series in one transaction.
// Returns the number of rows written.
func (r *Repository) Upsert(series string, observations []Observation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	now := time.Now().Unix()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO rate_observations (series, date, rate, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(series, date) DO UPDATE SET
				rate = excluded.rate,
				fetched_at = excluded.fetched_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, o := range observations {
			if _, err := stmt.Exec(series, utils.FormatDate(utils.NormalizeDate(o.Date)), o.Rate, now); err != nil {
				return fmt.Errorf("failed to upsert %s observation %s: %w", series, utils.FormatDate(o.Date), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().Str("series", series).Int("count", len(observations)).Msg("Upserted rate observations")
	return len(observations), nil
}

// GetAll returns every observation of a series, oldest first.
func (r *Repository) GetAll(series string) ([]Observation, error) {
	rows, err := r.db.Query(
		"SELECT date, rate FROM rate_observations WHERE series = ? ORDER BY date ASC",
		series,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate observations: %w", err)
	}
	defer rows.Close()

	var observations []Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate observations: %w", err)
	}
	return observations, nil
}

// Latest returns the most recent observation of a series, or nil if there is none.
func (r *Repository) Latest(series string) (*Observation, error) {
	row := r.db.QueryRow(
		"SELECT date, rate FROM rate_observations WHERE series = ? ORDER BY date DESC LIMIT 1",
		series,
	)
	o, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Count returns the number of stored observations of a series.
func (r *Repository) Count(series string) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM rate_observations WHERE series = ?", series).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rate observations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanObservation(s scanner) (Observation, error) {
	var (
		dateStr string
		rate    float64
	)
	if err := s.Scan(&dateStr, &rate); err != nil {
		if err == sql.ErrNoRows {
			return Observation{}, err
		}
		return Observation{}, fmt.Errorf("failed to scan rate observation: %w", err)
	}
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return Observation{}, err
	}
	return Observation{Date: date, Rate: rate}, nil
}
