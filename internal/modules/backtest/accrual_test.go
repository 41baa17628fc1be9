package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccrualSchedule_StateTransitions(t *testing.T) {
	s := newAccrualSchedule(flatRate(0.12))

	assert.Equal(t, 0.0, s.step(day("2021-04-29"), 1000, true, false))
	assert.Equal(t, withinMonth, s.state)
	assert.Equal(t, 1, s.days)

	// April 30 closes the segment: 2 of 30 days accrued.
	credit := s.step(day("2021-04-30"), 1000, false, false)
	assert.InDelta(t, 10*2.0/30.0, credit, 1e-12)
	assert.Equal(t, withinMonth, s.state)
	assert.Equal(t, 0, s.days)

	// May opens a new segment on the next step.
	assert.Equal(t, 0.0, s.step(day("2021-05-01"), 1000+credit, false, false))
	assert.Equal(t, day("2021-05-01"), s.reference)
	assert.Equal(t, 1000+credit, s.base)
}

func TestAccrualSchedule_OpeningSegmentIsDeferred(t *testing.T) {
	s := newAccrualSchedule(flatRate(0.12))

	assert.Equal(t, 0.0, s.step(day("2021-06-30"), 1000, true, false))
	assert.InDelta(t, 10*1.0/30.0, s.pending, 1e-12)

	credit := s.step(day("2021-07-01"), 1000, false, true)
	assert.InDelta(t, 10*1.0/30.0+10*1.0/31.0, credit, 1e-12)
	assert.Equal(t, 0.0, s.pending)
}

func TestAccrualSchedule_FullMonthPostsExactMonthlyInterest(t *testing.T) {
	s := newAccrualSchedule(flatRate(0.06))

	var credit float64
	for d := day("2021-02-01"); d.Month() == 2; d = d.AddDate(0, 0, 1) {
		credit += s.step(d, 2000, d.Day() == 1, false)
	}

	assert.InDelta(t, 10.0, credit, 1e-12)
}

func TestAccrualState_String(t *testing.T) {
	assert.Equal(t, "within_month", withinMonth.String())
	assert.Equal(t, "month_boundary_reached", monthBoundaryReached.String())
}
