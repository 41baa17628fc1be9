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
	"github.com/aristath/yieldboard/internal/modules/rates"
)

type emptyHistory struct{}

func (emptyHistory) Snapshot() (*rates.Resolver, error) {
	return rates.NewResolver(zerolog.Nop()), nil
}

func setupRouter() http.Handler {
	logger := zerolog.Nop()
	svc := backtest.NewService(emptyHistory{}, cache.New(logger), time.Minute, logger)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(svc, logger).RegisterRoutes)
	return router
}

func TestHandleCashBond(t *testing.T) {
	router := setupRouter()

	tests := []struct {
		name     string
		query    string
		status   int
		validate func(*testing.T, map[string]interface{})
	}{
		{
			name:   "full year on fallback rate",
			query:  "?start=2020-01-01&end=2020-12-31&capital=1000000",
			status: http.StatusOK,
			validate: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, 1_030_415.96, data["final_value"])
				assert.Equal(t, true, data["used_fallback_rate"])
				assert.Len(t, data["daily_values"], 366)
				assert.Len(t, data["yearly_details"], 1)
			},
		},
		{
			name:   "default capital",
			query:  "?start=2021-03-01&end=2021-03-01",
			status: http.StatusOK,
			validate: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, float64(DefaultCapital), data["final_value"])
				assert.Equal(t, 0.0, data["total_return"])
			},
		},
		{name: "missing start", query: "?end=2020-12-31", status: http.StatusBadRequest},
		{name: "bad end", query: "?start=2020-01-01&end=tomorrow", status: http.StatusBadRequest},
		{name: "reversed range", query: "?start=2021-01-01&end=2020-01-01", status: http.StatusBadRequest},
		{name: "zero capital", query: "?start=2020-01-01&end=2020-12-31&capital=0", status: http.StatusBadRequest},
		{name: "text capital", query: "?start=2020-01-01&end=2020-12-31&capital=abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/backtest/cash-bond"+tt.query, nil))

			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.validate == nil {
				return
			}
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			tt.validate(t, response["data"].(map[string]interface{}))
		})
	}
}

func TestParseRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2019-02-03&end=2019-05-06&capital=2500.5", nil)

	parsed, err := ParseRequest(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 2, 3, 0, 0, 0, 0, time.UTC), parsed.StartDate)
	assert.Equal(t, time.Date(2019, 5, 6, 0, 0, 0, 0, time.UTC), parsed.EndDate)
	assert.Equal(t, 2500.5, parsed.InitialCapital)
}
