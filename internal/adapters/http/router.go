package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/middleware"
	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
	"github.com/jsamuelsen/go-api-errors/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the base request logger. Nil uses the default logger.
	Logger *slog.Logger

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// Errors renders every error pushed onto the gin context.
	Errors *ErrorResponder

	// Locales negotiates the language of error messages.
	Locales middleware.LocaleMatcher

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// OrderHandler serves the orders API.
	OrderHandler *handlers.OrderHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Request logger, Request ID, Correlation ID
//  2. OpenTelemetry tracing, trace ID logging and metrics
//  3. Logging
//  4. Error handler - renders c.Errors once the inner chain returns
//  5. Recovery - turns panics into errors for the error handler
//  6. Locale - negotiates the message language
//
// Route groups:
//   - /-/ (internal): health endpoints, no auth, no timeout
//   - /api/v1/ (public API): authenticated, with request timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true

	if cfg.Logger != nil {
		engine.Use(middleware.WithLogger(cfg.Logger))
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.TraceLogging(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(),
		cfg.Errors.ErrorHandler(),
		middleware.Recovery(),
	)

	if cfg.Locales != nil {
		engine.Use(middleware.Locale(cfg.Locales))
	}

	engine.NoRoute(cfg.Errors.NoRoute())
	engine.NoMethod(cfg.Errors.NoMethod())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.RequireAuth(cfg.AuthConfig))

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.OrderHandler != nil {
		cfg.OrderHandler.RegisterRoutes(apiV1, middleware.RequireRole(cfg.AuthConfig, "admin"))
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	errs *ErrorResponder,
) RouterConfig {
	return RouterConfig{
		Logger:     logger,
		AuthConfig: authCfg,
		AppConfig:  appCfg,
		Errors:     errs,
		Timeout:    DefaultRequestTimeout,
	}
}
