package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
)

// withCarrier points the stack at a fake carrier answering with handler.
func withCarrier(t *testing.T, handler http.HandlerFunc) func(*config.Config) {
	t.Helper()

	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	return func(cfg *config.Config) {
		cfg.Services.Carrier = config.ServiceEndpointConfig{Enabled: true, BaseURL: upstream.URL, Name: "carrier"}
		cfg.Client = config.ClientConfig{
			Timeout: time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     1,
				InitialInterval: time.Millisecond,
				MaxInterval:     time.Millisecond,
				Multiplier:      2,
			},
			CircuitBreaker: config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute, HalfOpenLimit: 1},
		}
	}
}

func carrierReply(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func shipmentPath(id string) string {
	return "/api/v1/orders/" + id + "/shipment"
}

func TestRouter_Shipment(t *testing.T) {
	s := newStack(t, withCarrier(t, carrierReply(http.StatusOK, "application/json",
		`{"tracking_number":"1Z999","carrier":"UPS","status_code":"DL","events":[]}`)))

	w := s.do(newRequest(http.MethodGet, shipmentPath(shippedOrderID), "", asUser))

	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "Shipment retrieved.", env.Message)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "delivered", data["status"])
	assert.Equal(t, true, data["delivered"])
}

func TestRouter_ShipmentErrors(t *testing.T) {
	tests := []struct {
		name       string
		carrier    http.HandlerFunc
		orderID    string
		wantStatus int
		wantMsg    any
	}{
		{
			name:       "carrier has no parcel",
			carrier:    carrierReply(http.StatusNotFound, "application/json", `{"message":"unknown"}`),
			orderID:    shippedOrderID,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Shipment not found.",
		},
		{
			name:       "carrier rejects credentials",
			carrier:    carrierReply(http.StatusUnauthorized, "application/json", `{}`),
			orderID:    shippedOrderID,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Bad Gateway",
		},
		{
			name:       "order not shipped",
			carrier:    carrierReply(http.StatusOK, "application/json", `{}`),
			orderID:    paidOrderID,
			wantStatus: http.StatusConflict,
			wantMsg:    "Order " + paidOrderID + " has not shipped yet.",
		},
		{
			name:       "malformed carrier payload",
			carrier:    carrierReply(http.StatusOK, "application/json", `{"status_code":"DL"}`),
			orderID:    shippedOrderID,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Something went wrong. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStack(t, withCarrier(t, tt.carrier))

			w := s.do(newRequest(http.MethodGet, shipmentPath(tt.orderID), "", asUser))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w.Body.Bytes()).Message)
		})
	}
}

func TestRouter_ShipmentOutage(t *testing.T) {
	s := newStack(t, withCarrier(t, carrierReply(http.StatusServiceUnavailable, "application/json",
		`{"error":{"code":"MAINTENANCE","message":"back at noon"}}`)))

	w := s.do(newRequest(http.MethodGet, shipmentPath(shippedOrderID), "", asUser))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var upstream map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upstream))
	assert.Equal(t, "back at noon", upstream["error"]["message"])

	w = s.do(newRequest(http.MethodGet, shipmentPath(shippedOrderID), "", asUser))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "Service Unavailable", decode(t, w.Body.Bytes()).Message)
}

func TestRouter_ShipmentTrackingDisabled(t *testing.T) {
	s := newStack(t)

	w := s.do(newRequest(http.MethodGet, shipmentPath(shippedOrderID), "", asUser))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "Not Implemented", decode(t, w.Body.Bytes()).Message)
}
