package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth reports unhealthy when a database stops answering
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	databases := make(map[string]string)
	for name, db := range s.container.Databases() {
		if err := db.Conn().PingContext(ctx); err != nil {
			databases[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		databases[name] = "ok"
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "unhealthy"
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":    health,
		"version":   Version,
		"service":   "yieldboard",
		"databases": databases,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
