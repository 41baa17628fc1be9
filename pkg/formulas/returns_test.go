package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalReturnPercent(t *testing.T) {
	assert.InDelta(t, 3.0, TotalReturnPercent(1000, 1030), 1e-9)
	assert.Equal(t, 0.0, TotalReturnPercent(1000, 1000))
	assert.Equal(t, 0.0, TotalReturnPercent(0, 1000))
}

func TestAnnualizedReturnPercent(t *testing.T) {
	tests := []struct {
		name     string
		initial  float64
		final    float64
		days     int
		expected float64
	}{
		{"one calendar year", 100, 110, 365, 10},
		{"single day no growth", 100, 100, 1, 0},
		{"two years", 100, 121, 730, 10},
		{"zero days", 100, 110, 0, 0},
		{"non-positive initial", 0, 110, 365, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AnnualizedReturnPercent(tt.initial, tt.final, tt.days), 1e-9)
		})
	}
}

func TestAnnualizedReturnPercent_ShortPeriodIsNotClamped(t *testing.T) {
	result := AnnualizedReturnPercent(100, 101, 2)

	expected := (math.Pow(1.01, 365.0/2) - 1) * 100
	assert.InDelta(t, expected, result, 1e-6)
	assert.Greater(t, result, 500.0)
}

func TestChangePercent(t *testing.T) {
	assert.InDelta(t, 0.25, ChangePercent(1000, 1002.5), 1e-9)
	assert.Equal(t, 0.0, ChangePercent(0, 5))
}
