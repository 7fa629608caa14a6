package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/storerating/rating-platform/docs"
	"github.com/storerating/rating-platform/internal/api/handler"
	"github.com/storerating/rating-platform/internal/api/metrics"
	"github.com/storerating/rating-platform/internal/api/middleware"
	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	AuthService  ports.AuthService
	UserService  ports.UserService
	Tokens       ports.TokenValidator
	HealthChecks map[string]handler.Checker
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	reg := newRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ratings",
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	userHandler := handler.NewUserHandler(d.UserService)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	authn := middleware.Auth(d.Tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Public routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Self-service routes (any authenticated role) ---
	e.PUT("/users/password", userHandler.ChangePassword, authn)
	e.GET("/me", userHandler.Me, authn)

	// --- Administration routes ---
	e.POST("/users", userHandler.Create, authn, adminOnly)
	e.GET("/users", userHandler.List, authn, adminOnly)
	e.GET("/users/:id", userHandler.Get, authn, adminOnly)
	e.PUT("/users/:id/role", userHandler.UpdateRole, authn, adminOnly)

	// --- Probes and tooling (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// newRegistry returns a registry with the runtime collectors and the custom
// API metrics.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(reg)
	return reg
}
