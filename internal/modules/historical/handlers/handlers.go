// Package handlers provides HTTP handlers for historical data operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/modules/historical"
	"github.com/aristath/yieldboard/pkg/formulas"
)

// Handler handles historical data HTTP requests
type Handler struct {
	repo    *historical.Repository
	service *historical.Service
	log     zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(
	repo *historical.Repository,
	service *historical.Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "historical").Logger(),
	}
}

// HandleGetDailyPrices handles GET /api/historical/prices/daily/{symbol}
func (h *Handler) HandleGetDailyPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(symbol)
	limit := parseLimit(r, 100)

	prices, err := h.repo.GetDailyPrices(symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get daily prices")
		http.Error(w, "Failed to get daily prices", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"prices": prices,
		"count":  len(prices),
	}))
}

// HandleGetMonthlyPrices handles GET /api/historical/prices/monthly/{symbol}
func (h *Handler) HandleGetMonthlyPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(symbol)
	limit := parseLimit(r, 120) // 10 years

	prices, err := h.repo.GetMonthlyPrices(symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get monthly prices")
		http.Error(w, "Failed to get monthly prices", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"prices": prices,
		"count":  len(prices),
	}))
}

// HandleGetLatestPrice handles GET /api/historical/prices/latest/{symbol}
func (h *Handler) HandleGetLatestPrice(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(symbol)

	prices, err := h.repo.GetDailyPrices(symbol, 1)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get latest price")
		http.Error(w, "Failed to get latest price", http.StatusInternalServerError)
		return
	}

	var latest interface{}
	if len(prices) > 0 {
		latest = prices[0]
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"price":  latest,
	}))
}

// HandleGetDailyReturns handles GET /api/historical/returns/daily/{symbol}
func (h *Handler) HandleGetDailyReturns(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(symbol)
	limit := parseLimit(r, 100)

	prices, err := h.repo.GetDailyPrices(symbol, limit+1) // one extra for the oldest return
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get daily prices")
		http.Error(w, "Failed to get daily prices", http.StatusInternalServerError)
		return
	}

	returns := calculateReturns(prices)
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol":  symbol,
		"returns": returns,
		"count":   len(returns),
	}))
}

// HandleSync handles POST /api/historical/sync/{symbol}
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request, symbol string) {
	stored, err := h.service.Sync(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to sync prices")
		http.Error(w, "Failed to sync prices: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": strings.ToUpper(symbol),
		"stored": stored,
	}))
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func parseLimit(r *http.Request, def int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

// calculateReturns turns newest-first prices into newest-first percentage returns
func calculateReturns(prices []historical.DailyPrice) []map[string]interface{} {
	returns := make([]map[string]interface{}, 0)

	for i := 0; i < len(prices)-1; i++ {
		previous := prices[i+1].Close
		if previous <= 0 {
			continue
		}
		returns = append(returns, map[string]interface{}{
			"date":   prices[i].Date,
			"return": formulas.ChangePercent(previous, prices[i].Close),
		})
	}

	return returns
}
