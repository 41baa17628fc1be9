package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/clientdata"
	"github.com/aristath/yieldboard/internal/clients/alphavantage"
	"github.com/aristath/yieldboard/internal/config"
	"github.com/aristath/yieldboard/internal/database"
	"github.com/aristath/yieldboard/internal/modules/backtest"
	"github.com/aristath/yieldboard/internal/modules/charts"
	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/internal/modules/rates"
	"github.com/aristath/yieldboard/internal/reliability"
)

// InitializeServices builds repositories, clients and services on top of the
// open databases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())
	container.RateRepo = rates.NewRepository(container.HistoryDB.Conn(), log)
	container.PriceRepo = historical.NewRepository(container.HistoryDB.Conn(), log)

	// Without a key the services serve stored history only
	var (
		yieldSource rates.YieldSource
		priceSource historical.PriceSource
	)
	if cfg.AlphaVantageAPIKey != "" {
		client := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
		client.SetCacheRepo(container.ClientDataRepo)
		container.AlphaVantageClient = client
		yieldSource = client
		priceSource = client
	} else {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set, rate and price refresh disabled")
	}

	container.ResponseCache = cache.New(log)
	container.RateService = rates.NewService(container.RateRepo, yieldSource, cfg.TreasuryMaturity, log)
	container.HistoricalService = historical.NewService(container.PriceRepo, priceSource, log)
	container.BacktestService = backtest.NewService(container.RateService, container.ResponseCache, cfg.ResponseCacheTTL, log)
	container.ChartsService = charts.NewService(container.PriceRepo, log)

	// Cached reports were computed from the previous rate history
	container.RateService.OnRefresh(container.ResponseCache.Clear)

	if cfg.Backup != nil && cfg.Backup.Enabled {
		r2, err := reliability.NewR2Client(context.Background(), reliability.R2Config{
			AccountID:       cfg.Backup.AccountID,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			Bucket:          cfg.Backup.Bucket,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create r2 client: %w", err)
		}
		// client_data is refetchable, only history is worth keeping
		container.BackupService = reliability.NewBackupService(r2, map[string]*database.DB{
			"history": container.HistoryDB,
		}, cfg.DataDir, log)
	}

	log.Info().Msg("Services initialized")
	return nil
}
