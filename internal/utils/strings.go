package utils

import "strings"

// ParseSymbols splits a comma-separated list of ticker symbols, trimming
// whitespace, upper-casing and dropping empty and repeated entries.
// Returns nil for empty/whitespace-only input.
func ParseSymbols(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, v := range strings.Split(s, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(v))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		result = append(result, symbol)
	}

	return result
}
