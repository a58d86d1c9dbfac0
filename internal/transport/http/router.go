package http

import (
	"context"
	"net/http"

	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/transport/http/handler"
	appmiddleware "github.com/AymanSha3ban/MUC-Library/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiter's background cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, per client IP.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	authMw := appmiddleware.Auth(deps.JWTProvider)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(deps.VerificationService(cfg), cfg.AllowedEmailDomain)
	sessionH := handler.NewSessionHandler(deps.SessionService(cfg), cfg.FrontendURL)
	roleH := handler.NewRoleHandler(deps.RoleService())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/verifications", verificationH.Issue)
		r.With(sensitiveRL.Limit).Post("/verifications/redeem", verificationH.Redeem)
		r.With(sensitiveRL.Limit).Get("/auth/callback", sessionH.Callback)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/me", sessionH.GetCurrent)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/admin/roles", roleH.List)
			})
		})
	})

	return r
}
