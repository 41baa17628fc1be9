package clientdata

import "time"

// TTL constants for the persistent cache.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Treasury yields are published once per trading day and revised monthly.
	TTLEconomic = 24 * time.Hour
	// Daily bars only change after the market closes.
	TTLDailyPrices = 12 * time.Hour
)
