// Package handlers provides HTTP handlers for the rate history.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/yieldboard/internal/modules/rates"
	"github.com/aristath/yieldboard/internal/utils"
	"github.com/rs/zerolog"
)

// Handler handles rate history HTTP requests
type Handler struct {
	service *rates.Service
	log     zerolog.Logger
}

// NewHandler creates a new rates handler
func NewHandler(service *rates.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rates").Logger(),
	}
}

type observationDTO struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// HandleGetRates handles GET /api/rates
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	resolver, err := h.service.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load rate history")
		http.Error(w, "Failed to load rate history", http.StatusInternalServerError)
		return
	}

	observations := resolver.Observations()
	out := make([]observationDTO, len(observations))
	for i, o := range observations {
		out[i] = observationDTO{Date: utils.FormatDate(o.Date), Rate: o.Rate}
	}

	var latest *observationDTO
	if len(out) > 0 {
		latest = &out[len(out)-1]
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"series":       h.service.Series(),
			"observations": out,
			"count":        len(out),
			"latest":       latest,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetRateAt handles GET /api/rates/at?date=YYYY-MM-DD[&cash=N]
func (h *Handler) HandleGetRateAt(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		http.Error(w, "date parameter is required", http.StatusBadRequest)
		return
	}
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resolver, err := h.service.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load rate history")
		http.Error(w, "Failed to load rate history", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"date":     utils.FormatDate(date),
		"rate":     resolver.RateAt(date),
		"fallback": resolver.Len() == 0,
	}

	if cashStr := r.URL.Query().Get("cash"); cashStr != "" {
		cash, err := strconv.ParseFloat(cashStr, 64)
		if err != nil {
			http.Error(w, "cash must be a number", http.StatusBadRequest)
			return
		}
		data["cash"] = cash
		data["monthly_interest"] = resolver.MonthlyInterest(date, cash)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRefresh handles POST /api/rates/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	stored, err := h.service.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, rates.ErrNoSource) {
			http.Error(w, "Rate source is not configured", http.StatusServiceUnavailable)
			return
		}
		h.log.Error().Err(err).Msg("Failed to refresh rate history")
		http.Error(w, "Failed to refresh rate history", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"series": h.service.Series(),
			"stored": stored,
		},
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
