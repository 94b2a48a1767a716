package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devconnector/internal/handler"
	"devconnector/internal/httputil"
	"devconnector/internal/ratelimit"
	authmw "devconnector/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProfileHandler *handler.ProfileHandler
	PostHandler    *handler.PostHandler
	Tokens         authmw.TokenVerifier
	Limiter        ratelimit.Limiter
	RequestTimeout time.Duration
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.AccessLog)
	r.Use(authmw.Metrics)
	r.Use(middleware.Recoverer)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := authmw.AuthMiddleware(cfg.Tokens)

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		// Public auth endpoints, rate limited per client IP
		r.Route("/auth", func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(authmw.RateLimit(cfg.Limiter, "auth"))
			}
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/register_check/username", cfg.AuthHandler.CheckUsername)
			r.Post("/register_check/email", cfg.AuthHandler.CheckEmail)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/forgot", cfg.AuthHandler.Forgot)
			r.Post("/reset/{token}", cfg.AuthHandler.Reset)
		})

		r.With(requireAuth).Get("/users/me", cfg.UserHandler.Me)

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/all", cfg.ProfileHandler.List)
			r.Get("/github/{username}", cfg.ProfileHandler.Github)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Get("/me", cfg.ProfileHandler.Me)
				r.Delete("/me", cfg.UserHandler.Delete)
				r.Post("/", cfg.ProfileHandler.Create)
				r.Put("/", cfg.ProfileHandler.Update)

				r.Post("/experience", cfg.ProfileHandler.AddExperience)
				r.Put("/experience/{id}", cfg.ProfileHandler.UpdateExperience)
				r.Delete("/experience/{id}", cfg.ProfileHandler.DeleteExperience)

				r.Post("/education", cfg.ProfileHandler.AddEducation)
				r.Put("/education/{id}", cfg.ProfileHandler.UpdateEducation)
				r.Delete("/education/{id}", cfg.ProfileHandler.DeleteEducation)
			})

			r.Get("/{userId}", cfg.ProfileHandler.ByUser)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/all", cfg.PostHandler.List)
			r.Get("/{id}", cfg.PostHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/", cfg.PostHandler.Create)
				r.Delete("/{id}", cfg.PostHandler.Delete)
				r.Put("/like/{id}", cfg.PostHandler.Like)
				r.Put("/unlike/{id}", cfg.PostHandler.Unlike)
				r.Post("/comment/{id}", cfg.PostHandler.Comment)
				r.Delete("/comment/{id}/{comment_id}", cfg.PostHandler.DeleteComment)
			})
		})
	})

	return r
}
