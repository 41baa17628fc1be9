package backtest

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/modules/rates"
	"github.com/aristath/yieldboard/internal/utils"
)

// SnapshotProvider hands out the current rate resolver.
type SnapshotProvider interface {
	Snapshot() (*rates.Resolver, error)
}

// Service runs simulations against the current rate history.
type Service struct {
	rates    SnapshotProvider
	cache    *cache.Store
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewService creates a backtest service. responses may be nil to disable
// report caching.
func NewService(provider SnapshotProvider, responses *cache.Store, cacheTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		rates:    provider,
		cache:    responses,
		cacheTTL: cacheTTL,
		log:      log.With().Str("service", "backtest").Logger(),
	}
}

// Simulate runs one simulation on a fresh snapshot and returns the raw result
// together with the number of observations it used.
func (s *Service) Simulate(req Request) (*Result, int, error) {
	result, resolver, err := s.simulate(req)
	if err != nil {
		return nil, 0, err
	}
	return result, resolver.Len(), nil
}

func (s *Service) simulate(req Request) (*Result, *rates.Resolver, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, nil, err
	}

	resolver, err := s.rates.Snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}

	timer := utils.NewTimer("backtest_simulation", s.log)
	result, err := NewEngine(resolver).Simulate(req)
	timer.Stop()
	if err != nil {
		return nil, nil, err
	}
	return result, resolver, nil
}

// Run simulates req and returns its report, serving repeated requests from
// the response cache until the rate history changes.
func (s *Service) Run(req Request) (*Report, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if s.cache != nil {
		var cached Report
		ok, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable cached report")
		} else if ok {
			return &cached, nil
		}
	}

	result, resolver, err := s.simulate(req)
	if err != nil {
		return nil, err
	}
	report := NewReport(result, resolver.Len())

	s.log.Info().
		Str("run_id", report.RunID).
		Str("start", report.StartDate).
		Str("end", report.EndDate).
		Float64("capital", report.InitialCapital).
		Float64("final_value", report.FinalValue).
		Bool("fallback_rate", report.UsedFallbackRate).
		Msg("Backtest completed")

	if s.cache != nil {
		s.store(key, report, resolver)
	}
	return report, nil
}

// store caches report unless the rates changed while it was being built. A
// refresh swaps the snapshot before it clears the cache, so checking after
// Set catches a clear that ran between the simulation and the write.
func (s *Service) store(key string, report *Report, used *rates.Resolver) {
	if err := s.cache.Set(key, report, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache report")
		return
	}
	current, err := s.rates.Snapshot()
	if err != nil || current != used {
		s.cache.Delete(key)
		s.log.Debug().Str("key", key).Msg("Rates changed during backtest, report not cached")
	}
}

func cacheKey(req Request) string {
	return fmt.Sprintf("backtest:%s:%s:%g",
		utils.FormatDate(req.StartDate), utils.FormatDate(req.EndDate), req.InitialCapital)
}
