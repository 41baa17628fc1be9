package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/clientdata"
	"github.com/aristath/yieldboard/internal/config"
	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/internal/modules/rates"
	"github.com/aristath/yieldboard/internal/reliability"
	"github.com/aristath/yieldboard/internal/scheduler"
	"github.com/aristath/yieldboard/internal/utils"
)

const (
	cachePurgeSchedule  = "0 */10 * * * *"
	integritySchedule   = "0 15 3 * * *"
	walCheckpointPeriod = "0 0 * * * *"
)

// RegisterJobs creates the scheduler and registers every background job.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)
	container.Scheduler = sched

	instances := &JobInstances{
		RateRefresh:       rates.NewRefreshJob(container.RateService, log),
		PriceSync:         historical.NewSyncJob(container.HistoricalService, utils.ParseSymbols(cfg.BenchmarkSymbol), log),
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		CachePurge:        cache.NewPurgeJob(container.ResponseCache, log),
		CheckDatabases:    scheduler.NewCheckDatabasesJob(container.Databases(), log),
		WALCheckpoints:    scheduler.NewCheckWALCheckpointsJob(container.Databases(), log),
	}

	type registration struct {
		schedule string
		job      scheduler.Job
	}
	registrations := []registration{
		{cfg.CleanupSchedule, instances.ClientDataCleanup},
		{cachePurgeSchedule, instances.CachePurge},
		{integritySchedule, instances.CheckDatabases},
		{walCheckpointPeriod, instances.WALCheckpoints},
	}

	// Refresh jobs only make sense with a data source
	if container.AlphaVantageClient != nil {
		registrations = append(registrations,
			registration{cfg.RefreshSchedule, instances.RateRefresh},
			registration{cfg.RefreshSchedule, instances.PriceSync},
		)
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.Retain, log)
		registrations = append(registrations, registration{cfg.Backup.Schedule, instances.Backup})
	}

	for _, r := range registrations {
		if err := sched.AddJob(r.schedule, r.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", r.job.Name(), err)
		}
	}

	log.Info().Int("jobs", len(registrations)).Msg("Jobs registered")
	return instances, nil
}
