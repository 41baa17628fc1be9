// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Maturities accepted by the treasury yield series.
var validMaturities = map[string]bool{
	"3month": true,
	"2year":  true,
	"5year":  true,
	"7year":  true,
	"10year": true,
	"30year": true,
}

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for all databases (always absolute)
	Port               int
	LogLevel           string
	DevMode            bool
	AlphaVantageAPIKey string
	TreasuryMaturity   string
	BenchmarkSymbol    string
	RefreshSchedule    string
	CleanupSchedule    string
	ResponseCacheTTL   time.Duration
	Backup             *BackupConfig
}

// BackupConfig holds Cloudflare R2 backup settings
type BackupConfig struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Schedule        string
	Retain          int // Number of archives kept in the bucket
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("YIELDBOARD_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Port:               getEnvAsInt("PORT", 8001),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		TreasuryMaturity:   getEnv("TREASURY_MATURITY", "10year"),
		BenchmarkSymbol:    getEnv("BENCHMARK_SYMBOL", "SPY"),
		RefreshSchedule:    getEnv("REFRESH_SCHEDULE", "0 0 6 * * *"),
		CleanupSchedule:    getEnv("CLEANUP_SCHEDULE", "0 30 3 * * *"),
		ResponseCacheTTL:   time.Duration(getEnvAsInt("RESPONSE_CACHE_TTL_SECONDS", 300)) * time.Second,
		Backup:             loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !validMaturities[c.TreasuryMaturity] {
		return fmt.Errorf("unsupported treasury maturity %q", c.TreasuryMaturity)
	}
	if c.ResponseCacheTTL < 0 {
		return fmt.Errorf("response cache ttl must not be negative")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedules := map[string]string{
		"REFRESH_SCHEDULE": c.RefreshSchedule,
		"CLEANUP_SCHEDULE": c.CleanupSchedule,
	}
	if c.Backup != nil && c.Backup.Enabled {
		schedules["R2_BACKUP_SCHEDULE"] = c.Backup.Schedule
		if c.Backup.Bucket == "" {
			return fmt.Errorf("R2_BUCKET is required when backups are enabled")
		}
		if c.Backup.Retain < 1 {
			return fmt.Errorf("R2_BACKUP_RETAIN must be at least 1")
		}
	}
	for name, spec := range schedules {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// loadBackupConfig enables R2 backups when the account and both keys are set
func loadBackupConfig() *BackupConfig {
	cfg := &BackupConfig{
		AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("R2_BUCKET", "yieldboard-backups"),
		Schedule:        getEnv("R2_BACKUP_SCHEDULE", "0 0 4 * * *"),
		Retain:          getEnvAsInt("R2_BACKUP_RETAIN", 7),
	}
	cfg.Enabled = cfg.AccountID != "" && cfg.AccessKeyID != "" && cfg.SecretAccessKey != ""
	return cfg
}
