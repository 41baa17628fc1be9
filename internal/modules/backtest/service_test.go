package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/modules/rates"
)

type stubProvider struct {
	resolver *rates.Resolver
	err      error
	calls    int

	// refreshed, when set, replaces resolver after the first snapshot
	refreshed *rates.Resolver
}

func (p *stubProvider) Snapshot() (*rates.Resolver, error) {
	p.calls++
	if p.calls > 1 && p.refreshed != nil {
		p.resolver = p.refreshed
	}
	return p.resolver, p.err
}

func newStubProvider(obs []rates.Observation) *stubProvider {
	return &stubProvider{resolver: resolverWith(obs)}
}

func validRequest() Request {
	return Request{StartDate: day("2020-01-01"), EndDate: day("2020-12-31"), InitialCapital: 1_000_000}
}

func TestService_Run(t *testing.T) {
	provider := newStubProvider(monthlyObservations("2020-01-01", "2020-12-01", func(time.Time) float64 { return 0.03 }))
	svc := NewService(provider, nil, time.Minute, zerolog.Nop())

	report, err := svc.Run(validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1_030_415.96, report.FinalValue)
	assert.Equal(t, 12, report.RateObservations)
	assert.Equal(t, 1, provider.calls)
}

func TestService_RunUsesResponseCache(t *testing.T) {
	provider := newStubProvider(nil)
	store := cache.New(zerolog.Nop())
	svc := NewService(provider, store, time.Minute, zerolog.Nop())

	first, err := svc.Run(validRequest())
	require.NoError(t, err)

	// Time of day does not create a new cache entry
	req := validRequest()
	req.StartDate = req.StartDate.Add(9 * time.Hour)
	second, err := svc.Run(req)
	require.NoError(t, err)

	// one snapshot to simulate, one to confirm the rates did not change
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.FinalValue, second.FinalValue)

	store.Clear()
	third, err := svc.Run(validRequest())
	require.NoError(t, err)
	assert.Equal(t, 4, provider.calls)
	assert.NotEqual(t, first.RunID, third.RunID)
	assert.Equal(t, first.FinalValue, third.FinalValue)
}

func TestService_RunSkipsCacheWhenRatesChangeMidRun(t *testing.T) {
	provider := newStubProvider(nil)
	provider.refreshed = resolverWith(monthlyObservations("2020-01-01", "2020-12-01", func(time.Time) float64 { return 0.05 }))
	store := cache.New(zerolog.Nop())
	svc := NewService(provider, store, time.Minute, zerolog.Nop())

	stale, err := svc.Run(validRequest())
	require.NoError(t, err)
	assert.True(t, stale.UsedFallbackRate)
	assert.Equal(t, 0, store.Len())

	fresh, err := svc.Run(validRequest())
	require.NoError(t, err)
	assert.False(t, fresh.UsedFallbackRate)
	assert.NotEqual(t, stale.FinalValue, fresh.FinalValue)
	assert.Equal(t, 1, store.Len())
}

func TestService_ValidationHappensFirst(t *testing.T) {
	provider := newStubProvider(nil)
	svc := NewService(provider, cache.New(zerolog.Nop()), time.Minute, zerolog.Nop())

	_, err := svc.Run(Request{StartDate: day("2021-01-02"), EndDate: day("2021-01-01"), InitialCapital: 1})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, _, err = svc.Simulate(Request{StartDate: day("2021-01-01"), EndDate: day("2021-01-02"), InitialCapital: -1})
	assert.ErrorIs(t, err, ErrInvalidCapital)

	assert.Equal(t, 0, provider.calls)
}

func TestService_SnapshotFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("database is locked")}
	svc := NewService(provider, nil, time.Minute, zerolog.Nop())

	_, err := svc.Run(validRequest())
	assert.ErrorContains(t, err, "database is locked")
	assert.False(t, IsValidationError(err))
}
