package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "only spaces", input: "   ", expected: nil},
		{name: "comma only", input: ",", expected: nil},
		{name: "single value", input: "spy", expected: []string{"SPY"}},
		{name: "varied spacing", input: "SPY,  agg , Tlt", expected: []string{"SPY", "AGG", "TLT"}},
		{name: "multiple commas", input: ",,SPY,,AGG,,", expected: []string{"SPY", "AGG"}},
		{name: "duplicates removed", input: "SPY,spy, SPY", expected: []string{"SPY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSymbols(tt.input))
		})
	}
}
