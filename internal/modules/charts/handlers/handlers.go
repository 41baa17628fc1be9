// Package handlers provides HTTP handlers for chart data.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/cache"
	"github.com/aristath/yieldboard/internal/modules/backtest"
	backtesthandlers "github.com/aristath/yieldboard/internal/modules/backtest/handlers"
	"github.com/aristath/yieldboard/internal/modules/charts"
	"github.com/aristath/yieldboard/internal/utils"
)

// Handler handles chart HTTP requests
type Handler struct {
	service  *charts.Service
	backtest *backtest.Service
	cache    *cache.Store
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewHandler creates a new charts handler. responses may be nil.
func NewHandler(
	service *charts.Service,
	backtestService *backtest.Service,
	responses *cache.Store,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		backtest: backtestService,
		cache:    responses,
		cacheTTL: cacheTTL,
		log:      log.With().Str("handler", "charts").Logger(),
	}
}

// HandleBacktestChart handles GET /api/charts/backtest?start=&end=&capital=&group_by=
func (h *Handler) HandleBacktestChart(w http.ResponseWriter, r *http.Request) {
	req, err := backtesthandlers.ParseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = "day"
	}

	key := fmt.Sprintf("chart:backtest:%s:%s:%g:%s",
		utils.FormatDate(req.StartDate), utils.FormatDate(req.EndDate), req.InitialCapital, groupBy)

	var points []charts.ChartDataPoint
	if h.cache != nil {
		if ok, err := h.cache.Get(key, &points); err == nil && ok {
			h.writeData(w, points)
			return
		}
	}

	result, _, err := h.backtest.Simulate(req)
	if err != nil {
		if backtest.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to simulate backtest for chart")
		http.Error(w, "Failed to build chart", http.StatusInternalServerError)
		return
	}

	points, err = h.service.BacktestChart(result.DailyValues, groupBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(key, points, h.cacheTTL); err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("Failed to cache chart")
		}
	}
	h.writeData(w, points)
}

// HandleGetSecurityChart handles GET /api/charts/securities/{symbol}?range=&sma=
func (h *Handler) HandleGetSecurityChart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	dateRange := r.URL.Query().Get("range")
	if dateRange == "" {
		dateRange = "1Y"
	}

	smaLength := 0
	if s := r.URL.Query().Get("sma"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "sma must be a non-negative integer", http.StatusBadRequest)
			return
		}
		smaLength = n
	}

	chart, err := h.service.GetSecurityChart(symbol, dateRange, smaLength)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get security chart")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeData(w, chart)
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
