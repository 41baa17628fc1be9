// Package handlers provides HTTP handlers for backtest runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/modules/backtest"
	"github.com/aristath/yieldboard/internal/utils"
)

// DefaultCapital is used when the request does not name one.
const DefaultCapital = 1_000_000

// Handler handles backtest HTTP requests
type Handler struct {
	service *backtest.Service
	log     zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(service *backtest.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "backtest").Logger(),
	}
}

// ParseRequest reads start, end and capital from the query string.
// Range and capital checks are left to the service.
func ParseRequest(r *http.Request) (backtest.Request, error) {
	q := r.URL.Query()

	start, err := utils.ParseDate(q.Get("start"))
	if err != nil {
		return backtest.Request{}, err
	}
	end, err := utils.ParseDate(q.Get("end"))
	if err != nil {
		return backtest.Request{}, err
	}

	capital := float64(DefaultCapital)
	if s := q.Get("capital"); s != "" {
		capital, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return backtest.Request{}, backtest.ErrInvalidCapital
		}
	}

	return backtest.Request{StartDate: start, EndDate: end, InitialCapital: capital}, nil
}

// HandleCashBond handles GET /api/backtest/cash-bond?start=&end=&capital=
func (h *Handler) HandleCashBond(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Run(req)
	if err != nil {
		if backtest.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Backtest failed")
		http.Error(w, "Backtest failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
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
