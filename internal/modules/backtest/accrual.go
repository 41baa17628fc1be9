package backtest

import (
	"time"

	"github.com/aristath/yieldboard/internal/utils"
)

// RateSource supplies the monthly interest the schedule posts.
// *rates.Resolver satisfies it.
type RateSource interface {
	MonthlyInterest(date time.Time, cash float64) float64
}

type accrualState int

const (
	withinMonth accrualState = iota
	monthBoundaryReached
)

func (s accrualState) String() string {
	if s == monthBoundaryReached {
		return "month_boundary_reached"
	}
	return "within_month"
}

// accrualSchedule turns a day-by-day walk into monthly interest postings.
//
// Each calendar month present in the range is one segment. A segment posts
// on its last day in the range: the calendar month end, or the range end.
// A full month posts MonthlyInterest(first day of month, segment opening
// balance); a partial month posts the same amount scaled by
// daysPresent/daysInMonth. Nothing posts on the opening day of the range: a
// segment that closes there is held as pending and posted with the next one.
type accrualSchedule struct {
	source    RateSource
	state     accrualState
	reference time.Time // first day of the segment's calendar month
	base      float64   // balance when the segment opened
	days      int       // segment days seen so far
	pending   float64   // accrued but not yet posted
}

func newAccrualSchedule(source RateSource) *accrualSchedule {
	return &accrualSchedule{source: source, state: withinMonth}
}

// step records one simulated day and returns the interest to post on it.
// balance is the value before any posting on this day.
func (s *accrualSchedule) step(day time.Time, balance float64, opening, closing bool) float64 {
	if s.days == 0 {
		s.reference = utils.FirstOfMonth(day)
		s.base = balance
	}
	s.days++

	if closing || utils.IsMonthEnd(day) {
		s.state = monthBoundaryReached
	}
	if s.state == withinMonth {
		return 0
	}

	s.pending += s.accrued()
	s.days = 0
	s.state = withinMonth

	if opening {
		return 0
	}
	credit := s.pending
	s.pending = 0
	return credit
}

// accrued is the interest earned by the current segment.
func (s *accrualSchedule) accrued() float64 {
	full := s.source.MonthlyInterest(s.reference, s.base)
	daysInMonth := utils.DaysInMonth(s.reference)
	if s.days >= daysInMonth {
		return full
	}
	return full * float64(s.days) / float64(daysInMonth)
}
