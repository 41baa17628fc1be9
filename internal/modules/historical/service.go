package historical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/clients/alphavantage"
	"github.com/aristath/yieldboard/internal/utils"
)

// PriceSource provides daily bars, newest first.
type PriceSource interface {
	GetDailyPrices(ctx context.Context, symbol string, full bool) ([]alphavantage.DailyPrice, error)
}

// Service keeps local price history in sync with the price source.
type Service struct {
	repo   *Repository
	source PriceSource
	log    zerolog.Logger
}

// NewService creates a price history service.
func NewService(repo *Repository, source PriceSource, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		source: source,
		log:    log.With().Str("service", "historical").Logger(),
	}
}

// Sync stores the latest bars for symbol. The first sync of a symbol pulls
// the full history; later ones only the recent window.
func (s *Service) Sync(ctx context.Context, symbol string) (int, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("symbol cannot be empty")
	}
	if s.source == nil {
		return 0, fmt.Errorf("no price source configured")
	}

	existing, err := s.repo.Count(symbol)
	if err != nil {
		return 0, err
	}

	bars, err := s.source.GetDailyPrices(ctx, symbol, existing == 0)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}

	prices := make([]DailyPrice, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		prices = append(prices, DailyPrice{
			Date:   utils.FormatDate(b.Date),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	n, err := s.repo.UpsertDaily(symbol, prices)
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("symbol", symbol).Int("stored", n).Bool("full", existing == 0).Msg("Synced daily prices")
	return n, nil
}

// SyncJob syncs a fixed list of symbols on a schedule.
type SyncJob struct {
	service *Service
	symbols []string
	log     zerolog.Logger
}

// NewSyncJob creates a job that syncs symbols.
func NewSyncJob(service *Service, symbols []string, log zerolog.Logger) *SyncJob {
	return &SyncJob{
		service: service,
		symbols: symbols,
		log:     log.With().Str("job", "price_sync").Logger(),
	}
}

// Run syncs every symbol, continuing past failures. Returns the last error.
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var lastErr error
	for _, symbol := range j.symbols {
		if _, err := j.service.Sync(ctx, symbol); err != nil {
			j.log.Error().Err(err).Str("symbol", symbol).Msg("Price sync failed")
			lastErr = err
		}
	}
	return lastErr
}

// Name returns the job name for scheduling and logging.
func (j *SyncJob) Name() string {
	return "price_sync"
}
