package alphavantage

import (
	"fmt"
	"time"
)

// ErrRateLimitExceeded is returned when the daily request budget is spent or
// the API answers with a throttling notice.
type ErrRateLimitExceeded struct {
	ResetAt time.Time
}

func (e ErrRateLimitExceeded) Error() string {
	if e.ResetAt.IsZero() {
		return "alpha vantage rate limit exceeded"
	}
	return fmt.Sprintf("alpha vantage rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// ErrInvalidAPIKey is returned when the API rejects the configured key.
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage rejected the API key: invalid or missing"
}

// ErrSymbolNotFound is returned when a symbol has no data.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("symbol not found: %s", e.Symbol)
}

// APIError carries an "Error Message" returned by the API.
type APIError struct {
	Message string
}

func (e APIError) Error() string {
	return "alpha vantage error: " + e.Message
}
