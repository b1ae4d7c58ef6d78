package handlers

import (
	"net/http"
	"time"

	"netlibrarium/internal/engine/actors"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string    `json:"status"`
	UserCount  int64     `json:"userCount"`
	ServerTime time.Time `json:"server_time"`
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		counts, err := actors.Ask[*actors.Counts](ctx, s.Actors, &actors.GetCountsMsg{})
		if err != nil {
			respondMessage(w, http.StatusServiceUnavailable, "Store unavailable")
			return
		}
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:     "healthy",
			UserCount:  counts.Users,
			ServerTime: time.Now(),
		})
	}
}

// HandleNotFound answers every unmatched route.
func (s *Server) HandleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusNotFound, "Wrong route!")
	}
}

func (s *Server) HandleMethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
