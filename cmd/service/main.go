// Package main is the entry point for the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients/acl"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/memory"
	"github.com/jsamuelsen/go-api-errors/internal/app"
	"github.com/jsamuelsen/go-api-errors/internal/i18n"
	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
	"github.com/jsamuelsen/go-api-errors/internal/platform/telemetry"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Load message catalogs
	catalog, err := loadCatalog(&cfg.Exceptions)
	if err != nil {
		return err
	}

	// 6. Build the error pipeline
	renderer, err := http.NewRenderer(&cfg.Exceptions, catalog, dto.NewResponder(), http.NewErrorLogger(&cfg.Exceptions, logger))
	if err != nil {
		return fmt.Errorf("configuring error rendering: %w", err)
	}

	matcher, err := http.NewPathMatcher(cfg.Exceptions.APIPattern)
	if err != nil {
		return err
	}

	errorMetrics, err := telemetry.NewErrorMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering error metrics: %w", err)
	}

	// 7. Create the order store, the optional carrier adapter and the service
	repo := memory.NewOrderRepository()
	checkers := []ports.HealthChecker{catalog, repo}

	var tracker ports.ShipmentTracker

	if cfg.Services.Carrier.Enabled {
		carrier, err := newCarrier(cfg, logger)
		if err != nil {
			return err
		}

		tracker = carrier
		checkers = append(checkers, carrier)
	}

	orderService := app.NewOrderService(repo, &app.OrderServiceConfig{Logger: logger, Tracker: tracker})

	// 8. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	for _, checker := range checkers {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	// 10. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 11. Setup router with all middleware and routes
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		AuthConfig:    &cfg.Auth,
		AppConfig:     &cfg.App,
		Errors:        http.NewErrorResponder(renderer, matcher, errorMetrics),
		Locales:       catalog,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, buildInfo),
		OrderHandler:  handlers.NewOrderHandler(orderService, dto.NewResponder()),
		Timeout:       cfg.Server.RequestTimeout,
	})

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// loadCatalog builds the message catalog and applies {locale}.yaml overrides
// found in the configured language directory.
func loadCatalog(cfg *config.ExceptionsConfig) (*i18n.Catalog, error) {
	catalog, err := i18n.NewCatalog(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("creating message catalog: %w", err)
	}

	if cfg.LangDir == "" {
		return catalog, nil
	}

	for _, locale := range catalog.Locales() {
		path := filepath.Join(cfg.LangDir, locale+".yaml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := catalog.LoadFile(locale, path); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

// newCarrier builds the carrier tracking adapter from the client settings.
func newCarrier(cfg *config.Config, logger *slog.Logger) (*acl.CarrierClient, error) {
	endpoint := cfg.Services.Carrier

	var auth func(*stdhttp.Request)
	if endpoint.APIKey != "" {
		auth = func(r *stdhttp.Request) { r.Header.Set("X-Api-Key", endpoint.APIKey) }
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     endpoint.BaseURL,
		ServiceName: endpoint.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    auth,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", endpoint.Name, err)
	}

	return acl.NewCarrierClient(acl.CarrierClientConfig{Client: client, Logger: logger}), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
