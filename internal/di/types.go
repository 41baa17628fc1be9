// Package di provides dependency injection wiring and initialization.
package di

import (
	"errors"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/clientdata"
	"github.com/aristath/yieldboard/internal/clients/alphavantage"
	"github.com/aristath/yieldboard/internal/database"
	"github.com/aristath/yieldboard/internal/modules/backtest"
	"github.com/aristath/yieldboard/internal/modules/charts"
	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/internal/modules/rates"
	"github.com/aristath/yieldboard/internal/reliability"
	"github.com/aristath/yieldboard/internal/scheduler"
)

// Container holds all application dependencies.
//
// It is created by Wire() and handed to the server, which builds its
// handlers from it.
type Container struct {
	// Databases
	HistoryDB    *database.DB // rate and price history, backed up off-site
	ClientDataDB *database.DB // refetchable provider responses

	// Repositories
	ClientDataRepo *clientdata.Repository
	RateRepo       *rates.Repository
	PriceRepo      *historical.Repository

	// Clients
	AlphaVantageClient *alphavantage.Client // nil without an API key

	// Services
	ResponseCache     *cache.Store
	RateService       *rates.Service
	HistoricalService *historical.Service
	BacktestService   *backtest.Service
	ChartsService     *charts.Service
	BackupService     *reliability.BackupService // nil when backups are disabled

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs so they can be triggered manually
type JobInstances struct {
	RateRefresh       *rates.RefreshJob
	PriceSync         *historical.SyncJob
	ClientDataCleanup *clientdata.CleanupJob
	CachePurge        *cache.PurgeJob
	CheckDatabases    *scheduler.CheckDatabasesJob
	WALCheckpoints    *scheduler.CheckWALCheckpointsJob
	Backup            *reliability.BackupJob // nil when backups are disabled
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.HistoryDB != nil {
		dbs["history"] = c.HistoryDB
	}
	if c.ClientDataDB != nil {
		dbs["client_data"] = c.ClientDataDB
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() error {
	var errs []error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
