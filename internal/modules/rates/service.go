package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/yieldboard/internal/clients/alphavantage"
	"github.com/aristath/yieldboard/internal/utils"
	"github.com/rs/zerolog"
)

// ErrNoSource is returned by Refresh when no yield source is configured.
var ErrNoSource = errors.New("no yield source configured")

// YieldSource provides published treasury yields in percent.
type YieldSource interface {
	GetTreasuryYield(ctx context.Context, maturity, interval string) (*alphavantage.EconomicData, error)
}

// Service keeps the stored rate history current and hands out resolver
// snapshots for simulations.
type Service struct {
	repo     *Repository
	source   YieldSource
	maturity string
	log      zerolog.Logger

	refreshMu sync.Mutex
	current   atomic.Pointer[Resolver]

	listenersMu sync.Mutex
	listeners   []func()
}

// NewService creates a rate service for the treasury series of the given
// maturity. source may be nil, in which case only stored data is served.
func NewService(repo *Repository, source YieldSource, maturity string, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		source:   source,
		maturity: maturity,
		log:      log.With().Str("service", "rates").Logger(),
	}
}

// Series returns the storage key of the tracked series.
func (s *Service) Series() string {
	return "treasury_" + s.maturity
}

// OnRefresh registers fn to run after a refresh stored new data.
func (s *Service) OnRefresh(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh pulls the monthly yield series and stores it as annual fractions.
// Returns the number of observations written.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, ErrNoSource
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	timer := utils.NewTimer("rates_refresh", s.log)
	defer timer.Stop()

	data, err := s.source.GetTreasuryYield(ctx, s.maturity, "monthly")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s treasury yield: %w", s.maturity, err)
	}

	observations := make([]Observation, 0, len(data.Data))
	for _, point := range data.Data {
		observations = append(observations, Observation{
			Date: utils.NormalizeDate(point.Date),
			Rate: point.Value / 100,
		})
	}

	n, err := s.repo.Upsert(s.Series(), observations)
	if err != nil {
		return 0, err
	}

	resolver, err := s.load()
	if err != nil {
		return n, err
	}
	s.current.Store(resolver)

	s.log.Info().
		Str("series", s.Series()).
		Int("stored", n).
		Int("total", resolver.Len()).
		Msg("Rate history refreshed")

	s.notify()
	return n, nil
}

// Snapshot returns the resolver for the stored history. The resolver is
// shared and read-only; a refresh swaps in a new one rather than mutating it.
func (s *Service) Snapshot() (*Resolver, error) {
	if r := s.current.Load(); r != nil {
		return r, nil
	}

	r, err := s.load()
	if err != nil {
		return nil, err
	}
	if s.current.CompareAndSwap(nil, r) {
		return r, nil
	}
	return s.current.Load(), nil
}

// Latest returns the newest stored observation, or nil.
func (s *Service) Latest() (*Observation, error) {
	return s.repo.Latest(s.Series())
}

func (s *Service) load() (*Resolver, error) {
	observations, err := s.repo.GetAll(s.Series())
	if err != nil {
		return nil, err
	}
	r := NewResolver(s.log)
	r.Load(observations)
	return r, nil
}

func (s *Service) notify() {
	s.listenersMu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// RefreshJob refreshes the rate history on a schedule.
type RefreshJob struct {
	service *Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshJob creates the scheduled refresh job.
func NewRefreshJob(service *Service, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		timeout: 2 * time.Minute,
		log:     log.With().Str("job", "rates_refresh").Logger(),
	}
}

// Run refreshes the history once.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.Refresh(ctx); err != nil {
		j.log.Error().Err(err).Msg("Rate refresh failed")
		return err
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "rates_refresh"
}
