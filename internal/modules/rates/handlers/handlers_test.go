package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/yieldboard/internal/clients/alphavantage"
	"github.com/aristath/yieldboard/internal/modules/rates"
	testutil "github.com/aristath/yieldboard/internal/testing"
)

type stubSource struct {
	data *alphavantage.EconomicData
	err  error
}

func (s *stubSource) GetTreasuryYield(context.Context, string, string) (*alphavantage.EconomicData, error) {
	return s.data, s.err
}

func setupRouter(t *testing.T, source rates.YieldSource, seed []rates.Observation) http.Handler {
	t.Helper()
	logger := zerolog.Nop()

	db, cleanup := testutil.NewTestDB(t, "history")
	t.Cleanup(cleanup)

	repo := rates.NewRepository(db.Conn(), logger)
	_, err := repo.Upsert("treasury_10year", seed)
	require.NoError(t, err)

	handler := NewHandler(rates.NewService(repo, source, "10year", logger), logger)
	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Contains(t, response, "metadata")
	return response["data"].(map[string]interface{})
}

func TestHandleGetRates(t *testing.T) {
	router := setupRouter(t, nil, []rates.Observation{
		{Date: date("2024-01-01"), Rate: 0.0406},
		{Date: date("2024-02-01"), Rate: 0.0421},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rates/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)
	assert.Equal(t, "treasury_10year", data["series"])
	assert.Equal(t, 2.0, data["count"])
	latest := data["latest"].(map[string]interface{})
	assert.Equal(t, "2024-02-01", latest["date"])
	assert.Equal(t, 0.0421, latest["rate"])
}

func TestHandleGetRateAt(t *testing.T) {
	router := setupRouter(t, nil, []rates.Observation{
		{Date: date("2024-01-01"), Rate: 0.0406},
		{Date: date("2024-02-01"), Rate: 0.0421},
	})

	tests := []struct {
		name     string
		query    string
		status   int
		validate func(*testing.T, map[string]interface{})
	}{
		{
			name:   "nearest historical",
			query:  "?date=2024-01-20",
			status: http.StatusOK,
			validate: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, 0.0406, data["rate"])
				assert.Equal(t, false, data["fallback"])
			},
		},
		{
			name:   "with cash",
			query:  "?date=2024-02-01&cash=120000",
			status: http.StatusOK,
			validate: func(t *testing.T, data map[string]interface{}) {
				assert.InDelta(t, 421.0, data["monthly_interest"], 1e-9)
			},
		},
		{name: "missing date", query: "", status: http.StatusBadRequest},
		{name: "bad date", query: "?date=01-02-2024", status: http.StatusBadRequest},
		{name: "bad cash", query: "?date=2024-02-01&cash=lots", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rates/at"+tt.query, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.validate != nil {
				tt.validate(t, decode(t, w))
			}
		})
	}
}

func TestHandleGetRateAt_EmptyHistory(t *testing.T) {
	router := setupRouter(t, nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rates/at?date=2020-05-05", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)
	assert.Equal(t, rates.FallbackRate, data["rate"])
	assert.Equal(t, true, data["fallback"])
}

func TestHandleRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		source := &stubSource{data: &alphavantage.EconomicData{Data: []alphavantage.EconomicDataPoint{
			{Date: date("2024-03-01"), Value: 4.19},
		}}}
		router := setupRouter(t, source, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rates/refresh", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1.0, decode(t, w)["stored"])
	})

	t.Run("not configured", func(t *testing.T) {
		router := setupRouter(t, nil, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rates/refresh", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		router := setupRouter(t, &stubSource{err: errors.New("timeout")}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rates/refresh", nil))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
