package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ovotech/deployment-tracker/internal/auth"
)

// NewRouter creates and configures the HTTP router. Session-gated and
// key-gated groups are disjoint: no route ever applies both gates, and
// authentication always runs before the admin check.
func NewRouter(handlers *Handlers, verifier auth.Verifier, apiKeyGate *auth.APIKeyGate, adminPolicy *auth.AdminPolicy, loggingMiddleware *LoggingMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - ORDER MATTERS!
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware.Handler)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Unauthenticated endpoints
	r.Get("/health", handlers.Health)
	r.Get("/login", handlers.Login)
	r.Get("/oauth2/callback", handlers.OAuthCallback)
	r.Get("/logout", handlers.Logout)

	// Interactive routes: session identity required
	r.Route("/v1", func(r chi.Router) {
		r.Use(SessionAuth(verifier))

		r.Get("/deployments", handlers.ListDeployments)
		r.Post("/deployments", handlers.CreateDeployment)
		r.Get("/deployments/{deployment_id}", handlers.GetDeployment)

		// Privileged mutations
		r.Group(func(r chi.Router) {
			r.Use(AdminOnly(adminPolicy))
			r.Delete("/deployments/{deployment_id}", handlers.DeleteDeployment)
		})
	})

	// Machine-callable routes: API key only, never a session. The
	// automation caller carries no identity, so the admin guard on the
	// delete route always rejects it.
	r.Route("/hooks", func(r chi.Router) {
		r.Use(APIKeyAuth(apiKeyGate))

		r.Post("/deployments", handlers.HookCreateDeployment)

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly(adminPolicy))
			r.Delete("/deployments/{deployment_id}", handlers.DeleteDeployment)
		})
	})

	return r
}
