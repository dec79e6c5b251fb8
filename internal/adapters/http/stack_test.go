package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients/acl"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/memory"
	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/app"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/i18n"
	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
	"github.com/jsamuelsen/go-api-errors/internal/platform/telemetry"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	paidOrderID      = "0b5e7a52-6f1d-4b8e-9a51-1f0c2d3e4a5b"
	pendingOrderID   = "6c1f9d3e-2a4b-4c5d-8e6f-7a8b9c0d1e2f"
	cancelledOrderID = "9f8e7d6c-5b4a-4392-8170-6e5d4c3b2a19"
	shippedOrderID   = "3d2c1b0a-9f8e-4d7c-a6b5-4a3b2c1d0e9f"
)

var stackNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a slow
// handler and the request goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Reset()
}

// records returns the JSON log records whose msg equals msg.
func (b *syncBuffer) records(msg string) []map[string]any {
	var out []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(b.String()), "\n") {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) != nil {
			continue
		}

		if entry["msg"] == msg {
			out = append(out, entry)
		}
	}

	return out
}

// testStack is the full service router over an in-memory store.
type testStack struct {
	engine   *gin.Engine
	logs     *syncBuffer
	registry *prometheus.Registry
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "go-api-errors", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			RequestTimeout: 2 * time.Second,
		},
		Auth: config.AuthConfig{
			Enabled:       true,
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			ScopesHeader:  "X-User-Scopes",
		},
		Exceptions: config.ExceptionsConfig{
			APIPattern: "api/*",
			Locale:     "en",
			Logging: config.ExceptionLoggingConfig{
				Enabled: true,
				Level:   "error",
				Context: config.LogContextConfig{
					ErrorType:     true,
					ErrorMessage:  true,
					RequestURL:    true,
					RequestMethod: true,
					UserID:        true,
				},
			},
		},
	}
}

func seedOrders() []*domain.Order {
	return []*domain.Order{
		{
			ID: paidOrderID, Customer: "ada", Email: "ada@example.com", Status: domain.OrderStatusPaid,
			Currency: "EUR", Items: []domain.OrderItem{{SKU: "a", Quantity: 2, PriceCents: 500}},
			CreatedAt: stackNow.Add(-3 * time.Hour),
		},
		{
			ID: pendingOrderID, Customer: "bob", Email: "bob@example.com", Status: domain.OrderStatusPending,
			Currency: "USD", Items: []domain.OrderItem{{SKU: "b", Quantity: 1, PriceCents: 2500}},
			CreatedAt: stackNow.Add(-2 * time.Hour),
		},
		{
			ID: cancelledOrderID, Customer: "ada", Email: "ada@example.com", Status: domain.OrderStatusCancelled,
			Currency: "EUR", Items: []domain.OrderItem{{SKU: "c", Quantity: 3, PriceCents: 100}},
			CreatedAt: stackNow.Add(-1 * time.Hour),
		},
		{
			ID: shippedOrderID, Customer: "cy", Email: "cy@example.com", Status: domain.OrderStatusShipped,
			Currency: "GBP", Items: []domain.OrderItem{{SKU: "d", Quantity: 1, PriceCents: 4200}},
			CreatedAt: stackNow.Add(-48 * time.Hour),
		},
	}
}

// buildStack wires the router the way main does, plus a few debug routes
// that fail on purpose.
func buildStack(cfg *config.Config) (*testStack, error) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	catalog, err := i18n.NewCatalog(cfg.Exceptions.Locale)
	if err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(&cfg.Exceptions, catalog, dto.NewResponder(), NewErrorLogger(&cfg.Exceptions, logger))
	if err != nil {
		return nil, err
	}

	matcher, err := NewPathMatcher(cfg.Exceptions.APIPattern)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()

	metrics, err := telemetry.NewErrorMetrics(reg)
	if err != nil {
		return nil, err
	}

	repo := memory.NewOrderRepository(seedOrders()...)
	health := ports.NewHealthRegistry()

	for _, checker := range []ports.HealthChecker{catalog, repo} {
		if err := health.Register(checker); err != nil {
			return nil, err
		}
	}

	var tracker ports.ShipmentTracker

	if carrierCfg := cfg.Services.Carrier; carrierCfg.Enabled {
		client, err := clients.New(&clients.Config{
			BaseURL:     carrierCfg.BaseURL,
			ServiceName: carrierCfg.Name,
			Timeout:     cfg.Client.Timeout,
			Retry:       cfg.Client.Retry,
			Circuit:     cfg.Client.CircuitBreaker,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}

		tracker = acl.NewCarrierClient(acl.CarrierClientConfig{Client: client, Logger: logger})
	}

	svc := app.NewOrderService(repo, &app.OrderServiceConfig{
		Logger:  logger,
		Clock:   func() time.Time { return stackNow },
		Tracker: tracker,
	})

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:        logger,
		AuthConfig:    &cfg.Auth,
		AppConfig:     &cfg.App,
		Errors:        NewErrorResponder(renderer, matcher, metrics),
		Locales:       catalog,
		HealthHandler: handlers.NewHealthHandler(health, handlers.BuildInfo{Version: "test"}).WithGatherer(reg),
		OrderHandler:  handlers.NewOrderHandler(svc, dto.NewResponder()),
		Timeout:       cfg.Server.RequestTimeout,
	})

	debug := engine.Group("/api/debug")
	debug.GET("/panic", func(*gin.Context) { panic("kaboom") })
	debug.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
		c.Abort()
	})
	debug.GET("/teapot", func(c *gin.Context) {
		_ = c.Error(apierror.NewHTTPError(http.StatusTeapot, "").WithHeader("Retry-After", "120"))
		c.Abort()
	})
	debug.GET("/bogus-status", func(c *gin.Context) {
		_ = c.Error(apierror.NewHTTPError(42, "odd"))
		c.Abort()
	})
	debug.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		_ = c.Error(errors.New("too late"))
	})
	engine.GET("/legacy/fail", func(c *gin.Context) {
		_ = c.Error(apierror.NewHTTPError(http.StatusBadGateway, "upstream"))
		c.Abort()
	})
	engine.GET("/legacy/crash", func(c *gin.Context) {
		_ = c.Error(errors.New("hidden"))
		c.Abort()
	})

	return &testStack{engine: engine, logs: logs, registry: reg}, nil
}

func (s *testStack) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func newRequest(method, target, body string, headers map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}
