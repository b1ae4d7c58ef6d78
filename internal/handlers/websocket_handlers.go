package handlers

import (
	"net/http"

	"netlibrarium/internal/websocket"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (s *Server) upgrader() ws.Upgrader {
	return ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin applies the CORS origin list to websocket upgrades. Requests
// without an Origin header are not from browsers and are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// HandleStream handles GET /api/stream. With ?username=x the client only
// receives activity about that user; without it, everything.
func (s *Server) HandleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Hub == nil {
			respondMessage(w, http.StatusServiceUnavailable, "Activity stream disabled")
			return
		}
		topic := r.URL.Query().Get("username")

		upgrader := s.upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			log.Debug().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		client := websocket.NewClient(s.Hub, topic, conn)
		if !s.Hub.Add(client) {
			conn.Close()
			return
		}
		log.Debug().Str("topic", topic).Msg("WebSocket stream opened")

		go client.WritePump()
		go client.ReadPump()
	}
}
