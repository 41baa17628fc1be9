package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMASeries(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	series := SMASeries(closes, 3)
	require.Len(t, series, 3)
	assert.InDelta(t, 2.0, series[0], 1e-9)
	assert.InDelta(t, 3.0, series[1], 1e-9)
	assert.InDelta(t, 4.0, series[2], 1e-9)

	assert.Nil(t, SMASeries(closes, 6))
	assert.Nil(t, SMASeries(closes, 0))
	assert.Equal(t, closes, SMASeries(closes, 1))
}

