// Package main is the entry point for yieldboard, a cash-bond backtesting
// service driven by historical treasury yields.
//
// Startup sequence:
//  1. Load configuration from the environment (.env supported)
//  2. Initialize logging
//  3. Wire databases, clients, services and jobs
//  4. Prime the rate history when it is empty
//  5. Start the scheduler and the HTTP server
//  6. Wait for SIGINT/SIGTERM and shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/config"
	"github.com/aristath/yieldboard/internal/di"
	"github.com/aristath/yieldboard/internal/server"
	"github.com/aristath/yieldboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("maturity", cfg.TreasuryMaturity).
		Bool("backups", cfg.Backup.Enabled).
		Msg("Starting yieldboard")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	primeHistory(container, jobs, log)

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Waits for running jobs before the databases close
	container.Scheduler.Stop()

	log.Info().Msg("Server stopped")
}

// primeHistory fetches the rate series and benchmark prices in the
// background when nothing is stored yet, so the first backtest does not run
// entirely on the fallback rate.
func primeHistory(container *di.Container, jobs *di.JobInstances, log zerolog.Logger) {
	if container.AlphaVantageClient == nil {
		return
	}

	count, err := container.RateRepo.Count(container.RateService.Series())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count stored rate observations")
		return
	}
	if count > 0 {
		log.Info().Int("observations", count).Msg("Rate history present")
		return
	}

	log.Info().Msg("Rate history empty, priming in background")
	go func() {
		if err := container.Scheduler.RunNow(jobs.RateRefresh); err != nil {
			log.Error().Err(err).Msg("Failed to prime rate history")
		}
		if err := container.Scheduler.RunNow(jobs.PriceSync); err != nil {
			log.Error().Err(err).Msg("Failed to prime price history")
		}
	}()
}
