package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() http.Handler {
	router := chi.NewRouter()
	router.Route("/api", NewHandler(zerolog.Nop()).RegisterRoutes)
	return router
}

func TestHandleDCF(t *testing.T) {
	router := setupRouter()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "valid projection",
			body:   `{"base_cash_flow":100,"growth_rate":0.1,"discount_rate":0.1,"terminal_growth_rate":0.02,"years":3,"net_debt":75,"shares_outstanding":10}`,
			status: http.StatusOK,
		},
		{
			name:   "discount not above terminal growth",
			body:   `{"base_cash_flow":100,"growth_rate":0.1,"discount_rate":0.02,"terminal_growth_rate":0.02,"years":3}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing years",
			body:   `{"base_cash_flow":100,"discount_rate":0.1}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"base_cash_flow":100,"wacc":0.1,"years":3}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed json",
			body:   `{"base_cash_flow":`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/valuation/dcf", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleDCF_ResponseShape(t *testing.T) {
	router := setupRouter()

	body := `{"base_cash_flow":100,"growth_rate":0.1,"discount_rate":0.1,"terminal_growth_rate":0.02,"years":3,"net_debt":75,"shares_outstanding":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/valuation/dcf", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Contains(t, response, "metadata")

	data := response["data"].(map[string]interface{})
	assert.Equal(t, 1575.0, data["enterprise_value"])
	assert.Equal(t, 150.0, data["value_per_share"])
	assert.Len(t, data["years"], 3)
}

func TestHandleDCF_WrongMethod(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/dcf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
