package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMASeries returns the simple moving average for every index from
// length-1 onwards, so result[i] belongs to closes[i+length-1].
func SMASeries(closes []float64, length int) []float64 {
	if length < 1 || len(closes) < length {
		return nil
	}
	if length == 1 {
		out := make([]float64, len(closes))
		copy(out, closes)
		return out
	}
	return trimLookback(talib.Sma(closes, length), length)
}

// trimLookback drops the warm-up slots talib leaves at the front.
func trimLookback(series []float64, length int) []float64 {
	if len(series) < length {
		return nil
	}
	out := make([]float64, 0, len(series)-length+1)
	for _, v := range series[length-1:] {
		if isNaN(v) {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func isNaN(f float64) bool {
	return math.IsNaN(f)
}
