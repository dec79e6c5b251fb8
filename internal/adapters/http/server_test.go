package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
)

func serverConfig(host string, port int) *config.ServerConfig {
	return &config.ServerConfig{
		Host:           host,
		Port:           port,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerNew(t *testing.T) {
	cfg := serverConfig("127.0.0.1", 8080)
	logger := discardLogger()

	srv := New(cfg, logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.httpServer)
	assert.IsType(t, &gin.Engine{}, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, logger, srv.logger)
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{host: "localhost", port: 8080, want: "localhost:8080"},
		{host: "0.0.0.0", port: 3000, want: "0.0.0.0:3000"},
		{host: "127.0.0.1", port: 0, want: "127.0.0.1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, New(serverConfig(tt.host, tt.port), discardLogger()).Addr())
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(serverConfig("127.0.0.1", 0), discardLogger())

	errCh := srv.Start()

	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	select {
	case _, ok := <-errCh:
		assert.False(t, ok, "error channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server to shutdown")
	}
}

func TestServerMaxBodySize(t *testing.T) {
	cfg := serverConfig("127.0.0.1", 0)
	cfg.MaxRequestSize = 64

	srv := New(cfg, discardLogger())

	var lastErr error

	srv.Engine().POST("/orders", func(c *gin.Context) {
		var req dto.CreateOrderRequest
		if err := dto.BindAndValidate(c, &req); err != nil {
			lastErr = err
			c.Status(http.StatusTeapot)

			return
		}

		c.Status(http.StatusOK)
	})

	t.Run("over the limit", func(t *testing.T) {
		body := `{"customer":"` + strings.Repeat("x", 200) + `"}`

		w := (&testStack{engine: srv.Engine()}).do(newRequest(http.MethodPost, "/orders", body, nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		require.Error(t, lastErr)
		assert.Contains(t, lastErr.Error(), "too large")
	})
}
