package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2024, time.March, 5, 23, 59, 59, 999, loc)

	out := NormalizeDate(in)

	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), out)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", FormatDate(d))

	_, err = ParseDate("2020-13-01")
	assert.Error(t, err)

	_, err = ParseDate("01/02/2020")
	assert.Error(t, err)
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		date     string
		expected int
	}{
		{"2020-02-10", 29},
		{"2021-02-10", 28},
		{"2021-04-30", 30},
		{"2021-12-01", 31},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, DaysInMonth(d))
		})
	}
}

func TestIsMonthEndAndFirstOfMonth(t *testing.T) {
	d, _ := ParseDate("2020-02-29")
	assert.True(t, IsMonthEnd(d))
	assert.Equal(t, "2020-02-01", FormatDate(FirstOfMonth(d)))

	d, _ = ParseDate("2020-02-28")
	assert.False(t, IsMonthEnd(d))
}

func TestDaysInclusive(t *testing.T) {
	start, _ := ParseDate("2020-01-01")
	end, _ := ParseDate("2020-12-31")

	assert.Equal(t, 366, DaysInclusive(start, end))
	assert.Equal(t, 1, DaysInclusive(start, start))
	assert.Equal(t, -1, DaysBetween(end, end.AddDate(0, 0, -1)))
}

func TestDaysBetween_BeyondDurationRange(t *testing.T) {
	start, _ := ParseDate("1700-01-01")
	end, _ := ParseDate("2020-12-31")

	// 321 years, 78 of them leap (1700, 1800 and 1900 are not)
	assert.Equal(t, 321*365+78, DaysInclusive(start, end))
	assert.Equal(t, -(321*365 + 77), DaysBetween(end, start))

	far, _ := ParseDate("9999-12-31")
	origin, _ := ParseDate("0001-01-01")
	assert.Equal(t, 3652059, DaysInclusive(origin, far))
}
