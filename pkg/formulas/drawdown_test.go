package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected *float64
	}{
		{name: "empty", values: nil, expected: nil},
		{name: "single value", values: []float64{100}, expected: nil},
		{name: "non-decreasing series", values: []float64{100, 100, 101, 105}, expected: ptr(0)},
		{name: "single drop", values: []float64{100, 120, 90, 110}, expected: ptr(0.25)},
		{name: "deepest of two drops", values: []float64{100, 80, 150, 90, 160}, expected: ptr(0.4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMaxDrawdown(tt.values)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-12)
		})
	}
}

func ptr(v float64) *float64 { return &v }
