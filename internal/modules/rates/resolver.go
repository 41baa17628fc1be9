// Package rates resolves point-in-time market interest rates from a sparse
// series of monthly government-bond observations.
package rates

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/aristath/yieldboard/internal/utils"
	"github.com/rs/zerolog"
)

// FallbackRate is used when no observations are loaded at all (3% p.a.).
const FallbackRate = 0.03

// Observation is a single (date, rate) sample. Rate is a fraction per annum.
type Observation struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// Resolver answers rate queries with a nearest-available-observation policy.
//
// A Resolver is read-only while simulations use it. Load replaces the whole
// observation set and must not run concurrently with readers; callers that
// refresh data build a new Resolver instead.
type Resolver struct {
	byDate       map[string]float64
	observations []Observation // sorted by date, one per distinct date
	warnedEmpty  atomic.Bool
	log          zerolog.Logger
}

// NewResolver creates an empty resolver.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		byDate: make(map[string]float64),
		log:    log.With().Str("component", "rate_resolver").Logger(),
	}
}

// Load replaces the observation set. Dates are normalized to calendar days;
// for duplicate dates the last one in the input wins. Rates are not validated.
func (r *Resolver) Load(observations []Observation) {
	byDate := make(map[string]float64, len(observations))
	for _, o := range observations {
		byDate[utils.FormatDate(utils.NormalizeDate(o.Date))] = o.Rate
	}

	sorted := make([]Observation, 0, len(byDate))
	for key, rate := range byDate {
		d, err := utils.ParseDate(key)
		if err != nil {
			continue
		}
		sorted = append(sorted, Observation{Date: d, Rate: rate})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	r.byDate = byDate
	r.observations = sorted
	r.warnedEmpty.Store(false)

	r.log.Debug().Int("observations", len(sorted)).Msg("Loaded rate observations")
}

// Len returns the number of distinct observation dates.
func (r *Resolver) Len() int {
	return len(r.observations)
}

// Observations returns a copy of the loaded observations in date order.
func (r *Resolver) Observations() []Observation {
	out := make([]Observation, len(r.observations))
	copy(out, r.observations)
	return out
}

// RateAt returns the annual rate applicable on date.
//
// Exact matches win. Otherwise the nearest observation on or before date is
// used; if date precedes all data the nearest observation overall is used.
// With no data the FallbackRate is returned.
func (r *Resolver) RateAt(date time.Time) float64 {
	date = utils.NormalizeDate(date)

	if rate, ok := r.byDate[utils.FormatDate(date)]; ok {
		return rate
	}

	if len(r.observations) == 0 {
		if r.warnedEmpty.CompareAndSwap(false, true) {
			r.log.Warn().
				Float64("fallback_rate", FallbackRate).
				Msg("No rate observations loaded, using fallback rate")
		}
		r.log.Debug().
			Str("date", utils.FormatDate(date)).
			Float64("fallback_rate", FallbackRate).
			Msg("Rate fallback applied")
		return FallbackRate
	}

	// observations[:n] are the ones on or before date
	n := sort.Search(len(r.observations), func(i int) bool {
		return r.observations[i].Date.After(date)
	})
	if n > 0 {
		return nearest(r.observations[:n], date).Rate
	}
	return nearest(r.observations, date).Rate
}

// MonthlyInterest is one month of simple interest on cash at the rate for date.
func (r *Resolver) MonthlyInterest(date time.Time, cash float64) float64 {
	return cash * r.RateAt(date) / 12
}

// nearest returns the candidate with the smallest absolute day distance to
// date. On a tie the later observation wins. candidates must be non-empty.
//
// RateAt never produces a tie: it passes either only observations on or
// before date, or only observations after it, and dates are unique. The
// rule only matters for mixed candidate sets.
func nearest(candidates []Observation, date time.Time) Observation {
	best := candidates[0]
	bestDistance := absDays(best.Date, date)
	for _, c := range candidates[1:] {
		d := absDays(c.Date, date)
		if d < bestDistance || (d == bestDistance && c.Date.After(best.Date)) {
			best = c
			bestDistance = d
		}
	}
	return best
}

func absDays(a, b time.Time) int {
	d := utils.DaysBetween(a, b)
	if d < 0 {
		return -d
	}
	return d
}
