package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/modules/backtest"
	"github.com/aristath/yieldboard/internal/modules/charts"
	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/internal/modules/rates"
)

type emptyHistory struct{}

func (emptyHistory) Snapshot() (*rates.Resolver, error) {
	return rates.NewResolver(zerolog.Nop()), nil
}

type fixedPrices []historical.DailyPrice

func (p fixedPrices) GetDailyPrices(string, int) ([]historical.DailyPrice, error) {
	return p, nil
}

func setupRouter(t *testing.T) (http.Handler, *cache.Store) {
	t.Helper()
	logger := zerolog.Nop()
	store := cache.New(logger)

	prices := fixedPrices{
		{Date: "2024-01-04", Close: 4},
		{Date: "2024-01-03", Close: 3},
		{Date: "2024-01-02", Close: 2},
	}
	handler := NewHandler(
		charts.NewService(prices, logger),
		backtest.NewService(emptyHistory{}, nil, time.Minute, logger),
		store,
		time.Minute,
		logger,
	)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router, store
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleBacktestChart(t *testing.T) {
	router, store := setupRouter(t)

	rec := get(t, router, "/api/charts/backtest?start=2020-01-01&end=2020-12-31&group_by=month")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []charts.ChartDataPoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 12)
	assert.Equal(t, "2020-01", body.Data[0].Time)
	assert.Equal(t, "2020-12", body.Data[11].Time)
	assert.InDelta(t, 1_030_415.96, body.Data[11].Value, 0.01)
	assert.Equal(t, 1, store.Len())

	// Served from the cache the second time
	rec = get(t, router, "/api/charts/backtest?start=2020-01-01&end=2020-12-31&group_by=month")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.Len())
}

func TestHandleBacktestChart_BadRequests(t *testing.T) {
	router, _ := setupRouter(t)

	for _, url := range []string{
		"/api/charts/backtest?start=2020-01-01",
		"/api/charts/backtest?start=2020-12-31&end=2020-01-01",
		"/api/charts/backtest?start=2020-01-01&end=2020-12-31&group_by=year",
		"/api/charts/backtest?start=2020-01-01&end=2020-12-31&capital=-5",
	} {
		rec := get(t, router, url)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestHandleGetSecurityChart(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(t, router, "/api/charts/securities/spy?range=all&sma=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data charts.SecurityChart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SPY", body.Data.Symbol)
	require.Len(t, body.Data.Prices, 3)
	assert.Equal(t, "2024-01-02", body.Data.Prices[0].Time)
	require.Len(t, body.Data.SMA, 2)
	assert.InDelta(t, 2.5, body.Data.SMA[0].Value, 1e-9)

	rec = get(t, router, "/api/charts/securities/spy?sma=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, router, "/api/charts/securities/spy?range=7D")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
