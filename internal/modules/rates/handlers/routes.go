package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers rate history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rates", func(r chi.Router) {
		r.Get("/", h.HandleGetRates)
		r.Get("/at", h.HandleGetRateAt)
		r.Post("/refresh", h.HandleRefresh)
	})
}
