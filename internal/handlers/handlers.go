package handlers

import (
	"net/http"
	"time"

	"netlibrarium/internal/engine/actors"
	"netlibrarium/internal/middleware"
	"netlibrarium/internal/utils"
	"netlibrarium/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server holds all server dependencies. Every engine call goes through the
// actor client.
type Server struct {
	Actors         *actors.Client
	Metrics        *utils.MetricsCollector
	Hub            *websocket.Hub
	AllowedOrigins []string
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components. metrics
// and hub may be nil.
func NewServer(client *actors.Client, metrics *utils.MetricsCollector, hub *websocket.Hub) *Server {
	return &Server{
		Actors:         client,
		Metrics:        metrics,
		Hub:            hub,
		MetricsEnabled: metrics != nil,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// Router builds the HTTP routes. The REST API lives under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(s.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(s.AllowedOrigins)))

	r.NotFound(s.HandleNotFound())
	r.MethodNotAllowed(s.HandleMethodNotAllowed())

	r.Get("/health", s.HandleHealth())
	if s.MetricsEnabled && s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stream", s.HandleStream())

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.HandleListUsers())
			r.Post("/", s.HandleCreateUser())

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", s.HandleGetUser())
				r.Put("/", s.HandleUpdateUser())
				r.Delete("/", s.HandleDeleteUser())

				r.Post("/friends/{friendId}", s.HandleAddFriend())
				r.Delete("/friends/{friendId}", s.HandleRemoveFriend())
			})
		})

		r.Route("/thoughts", func(r chi.Router) {
			r.Get("/", s.HandleListThoughts())
			r.Post("/", s.HandleCreateThought())

			r.Route("/{thoughtId}", func(r chi.Router) {
				r.Get("/", s.HandleGetThought())
				r.Put("/", s.HandleUpdateThought())
				r.Delete("/", s.HandleDeleteThought())

				r.Post("/reactions", s.HandleAddReaction())
				r.Delete("/reactions/{reactionId}", s.HandleRemoveReaction())
			})
		})
	})

	return r
}
