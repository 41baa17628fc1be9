// Package handlers provides HTTP handlers for valuations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/yieldboard/internal/modules/valuation"
)

// maxBodyBytes caps the request body size
const maxBodyBytes = 1 << 16

// Handler handles valuation HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "valuation").Logger(),
	}
}

// RegisterRoutes registers valuation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/valuation", func(r chi.Router) {
		r.Post("/dcf", h.HandleDCF)
	})
}

// HandleDCF handles POST /api/valuation/dcf
func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	var req valuation.DCFRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := valuation.DCF(req)
	if err != nil {
		if valuation.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("DCF valuation failed")
		http.Error(w, "Valuation failed", http.StatusInternalServerError)
		return
	}

	h.log.Debug().
		Int("years", req.Years).
		Float64("enterprise_value", result.EnterpriseValue).
		Msg("DCF valuation computed")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
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
