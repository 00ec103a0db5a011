package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unalone/unalone-api/internal/application/auth"
	planapp "github.com/unalone/unalone-api/internal/application/plan"
	"github.com/unalone/unalone-api/internal/application/session"
	userapp "github.com/unalone/unalone-api/internal/application/user"
	"github.com/unalone/unalone-api/internal/config"
	jwtinfra "github.com/unalone/unalone-api/internal/infrastructure/jwt"
	"github.com/unalone/unalone-api/internal/infrastructure/otpstore"
	"github.com/unalone/unalone-api/internal/infrastructure/postgres"
	s3infra "github.com/unalone/unalone-api/internal/infrastructure/s3"
	"github.com/unalone/unalone-api/internal/infrastructure/smtp"
	"github.com/unalone/unalone-api/internal/transport/http/cookie"
	"github.com/unalone/unalone-api/internal/transport/http/handler"
	appmiddleware "github.com/unalone/unalone-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *postgres.UserRepo
	SessionRepo *postgres.SessionRepo
	PlanRepo    *postgres.PlanRepo
	OTPStore    otpstore.Store
	Mailer      smtp.Mailer
	S3Store     *s3infra.Store
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		// Auth rides on http-only cookies, so CORS must allow credentials.
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	authMw := appmiddleware.Auth(deps.JWTProvider)

	cookieOpts := cookie.Options{Secure: cfg.CookieSecure}

	authSvc := auth.NewService(auth.ServiceDeps{
		OTPStore:    deps.OTPStore,
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Mailer:      deps.Mailer,
		JWTProvider: deps.JWTProvider,
		OTPExpiry:   cfg.OTPExpiry,
		SessionDur:  cfg.SessionExpiry,
	})
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider, deps.S3Store)
	planSvc := planapp.NewService(deps.PlanRepo)
	userSvc := userapp.NewService(deps.UserRepo, deps.S3Store)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, sessionSvc, cookieOpts, cfg.AccessTokenExpiry, cfg.SessionExpiry)
	planH := handler.NewPlanHandler(planSvc)
	userH := handler.NewUserHandler(userSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/auth", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/send-otp", authH.SendOTP)
		r.Post("/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.Post("/refresh", authH.Refresh)
		r.Post("/logout", authH.Logout)

		// ── Authenticated ────────────────────────────────────────────────
		r.With(authMw).Get("/me", authH.Me)
	})

	r.Route("/plans", func(r chi.Router) {
		r.Use(authMw)
		r.Get("/nearby", planH.Nearby)
		r.Post("/create", planH.Create)
		r.Post("/{id}/join", planH.Join)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authMw)
		r.Post("/avatar", userH.UploadAvatar)
	})

	return r
}
