package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"bolt-api/internal/container"
	"bolt-api/internal/middleware"
	"bolt-api/pkg/errors"
)

// NewRouter configures the HTTP routes. Every route is served both at the
// root and under /api.
func NewRouter(c *container.Container) http.Handler {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	if c.HasTokens() {
		r.Use(middleware.OptionalAuth(c.Tokens, log))
	}

	healthHandler := NewHealthHandler(c)
	authHandler := NewAuthHandler(c)
	userHandler := NewUserHandler(c)
	groupHandler := NewGroupHandler(c)
	pollHandler := NewPollHandler(c)

	routes := func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
		})

		r.Put("/users/profile", userHandler.UpdateProfile)
		r.Get("/friends/search", userHandler.Search)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", groupHandler.List)
			r.Post("/", groupHandler.Create)
			r.Get("/{groupID}", groupHandler.Get)
			r.Post("/{groupID}/members", groupHandler.AddMember)
			r.Post("/{groupID}/polls", pollHandler.Create)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/{pollID}", pollHandler.Get)
			r.Post("/{pollID}/vote", pollHandler.Vote)
		})
	}

	routes(r)
	r.Route("/api", routes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, errors.NewNotFoundError("Endpoint not found"), log)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		appErr := &errors.AppError{
			Type:       errors.ErrorTypeValidation,
			Message:    "Method not allowed",
			StatusCode: http.StatusMethodNotAllowed,
		}
		writeErrorResponse(w, r, appErr, log)
	})

	log.Info("Router configured successfully")
	return r
}
