package rates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func newLoadedResolver(obs ...Observation) *Resolver {
	r := NewResolver(zerolog.Nop())
	r.Load(obs)
	return r
}

func TestRateAt_ExactMatch(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-01-01"), Rate: 0.015},
		Observation{Date: day("2020-02-01"), Rate: 0.017},
	)

	assert.Equal(t, 0.017, r.RateAt(day("2020-02-01")))
}

func TestRateAt_IgnoresTimeOfDay(t *testing.T) {
	r := newLoadedResolver(Observation{Date: day("2020-02-01"), Rate: 0.017})

	query := time.Date(2020, time.February, 1, 18, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, 0.017, r.RateAt(query))
}

func TestRateAt_EmptyResolverFallsBack(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(zerolog.New(&buf).Level(zerolog.WarnLevel))

	assert.Equal(t, FallbackRate, r.RateAt(day("2020-06-15")))
	assert.Equal(t, FallbackRate, r.RateAt(day("1999-01-01")))

	// One warning per loaded snapshot, not one per query.
	assert.Equal(t, 1, strings.Count(buf.String(), "No rate observations loaded"))

	r.Load(nil)
	r.RateAt(day("2020-06-15"))
	assert.Equal(t, 2, strings.Count(buf.String(), "No rate observations loaded"))
}

func TestRateAt_PrefersHistoricalObservation(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-01-01"), Rate: 0.01},
		Observation{Date: day("2020-02-01"), Rate: 0.02},
	)

	// 2020-01-30 is closer to February's observation, but that one lies in
	// the future so January's applies.
	assert.Equal(t, 0.01, r.RateAt(day("2020-01-30")))
	// After all data the latest observation applies.
	assert.Equal(t, 0.02, r.RateAt(day("2021-07-04")))
}

func TestRateAt_BeforeAllDataUsesNearestOverall(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-03-01"), Rate: 0.03},
		Observation{Date: day("2020-01-01"), Rate: 0.01},
		Observation{Date: day("2020-02-01"), Rate: 0.02},
	)

	assert.Equal(t, 0.01, r.RateAt(day("2019-12-15")))
}

func TestRateAt_NegativeAndLargeRatesPassThrough(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-01-01"), Rate: -0.005},
		Observation{Date: day("2020-02-01"), Rate: 1.5},
	)

	assert.Equal(t, -0.005, r.RateAt(day("2020-01-20")))
	assert.Equal(t, 1.5, r.RateAt(day("2020-02-20")))
}

func TestLoad_DuplicateDatesLastWins(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-01-01"), Rate: 0.01},
		Observation{Date: day("2020-01-01"), Rate: 0.05},
	)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0.05, r.RateAt(day("2020-01-01")))
	assert.Equal(t, 0.05, r.RateAt(day("2020-01-10")))
}

func TestLoad_ReplacesPreviousSet(t *testing.T) {
	r := newLoadedResolver(Observation{Date: day("2020-01-01"), Rate: 0.01})
	r.Load([]Observation{{Date: day("2021-01-01"), Rate: 0.04}})

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0.04, r.RateAt(day("2020-01-01")))
}

func TestObservations_SortedCopy(t *testing.T) {
	r := newLoadedResolver(
		Observation{Date: day("2020-03-01"), Rate: 0.03},
		Observation{Date: day("2020-01-01"), Rate: 0.01},
	)

	obs := r.Observations()
	require.Len(t, obs, 2)
	assert.Equal(t, day("2020-01-01"), obs[0].Date)

	obs[0].Rate = 99
	assert.Equal(t, 0.01, r.RateAt(day("2020-01-01")))
}

func TestNearest_TieBreakPicksLaterObservation(t *testing.T) {
	// 2020-01-16 is 15 days from both observations.
	candidates := []Observation{
		{Date: day("2020-01-01"), Rate: 0.01},
		{Date: day("2020-01-31"), Rate: 0.02},
	}

	assert.Equal(t, 0.02, nearest(candidates, day("2020-01-16")).Rate)

	reversed := []Observation{candidates[1], candidates[0]}
	assert.Equal(t, 0.02, nearest(reversed, day("2020-01-16")).Rate)
}

func TestRateAt_EquidistantObservationsUseHistorical(t *testing.T) {
	// nearest would pick January 31 on a tie, but RateAt only weighs
	// observations on or before the date when any exist.
	r := newLoadedResolver(
		Observation{Date: day("2020-01-01"), Rate: 0.01},
		Observation{Date: day("2020-01-31"), Rate: 0.02},
	)

	assert.Equal(t, 0.01, r.RateAt(day("2020-01-16")))
}

func TestMonthlyInterest(t *testing.T) {
	r := newLoadedResolver(Observation{Date: day("2020-01-01"), Rate: 0.06})

	assert.InDelta(t, 500.0, r.MonthlyInterest(day("2020-01-01"), 100000), 1e-9)
	assert.InDelta(t, 250.0, NewResolver(zerolog.Nop()).MonthlyInterest(day("2020-01-01"), 100000), 1e-9)
}
