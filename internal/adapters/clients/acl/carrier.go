package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
)

// CarrierClientConfig contains configuration for the carrier client.
type CarrierClientConfig struct {
	// Client is the HTTP client; its BaseURL points at the carrier API.
	Client *clients.Client

	Logger *slog.Logger
}

// CarrierClient implements ports.ShipmentTracker against the carrier's
// tracking API.
type CarrierClient struct {
	BaseAdapter
	logger *slog.Logger
}

// NewCarrierClient creates a carrier adapter.
// Panics if Client is nil.
func NewCarrierClient(cfg CarrierClientConfig) *CarrierClient {
	if cfg.Client == nil {
		panic("CarrierClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CarrierClient{
		BaseAdapter: NewBaseAdapter(cfg.Client),
		logger:      logger,
	}
}

// trackingResponse is the carrier's tracking payload.
type trackingResponse struct {
	TrackingNumber    string          `json:"tracking_number"`
	Carrier           string          `json:"carrier"`
	StatusCode        string          `json:"status_code"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	Events            []trackingEvent `json:"events"`
}

type trackingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// carrierStatuses maps the carrier's two-letter codes.
var carrierStatuses = map[string]domain.ShipmentStatus{
	"LC": domain.ShipmentStatusLabelCreated,
	"IT": domain.ShipmentStatusInTransit,
	"OD": domain.ShipmentStatusOutForDelivery,
	"DL": domain.ShipmentStatusDelivered,
	"RS": domain.ShipmentStatusReturned,
}

// Track fetches the parcel of an order.
func (c *CarrierClient) Track(ctx context.Context, orderID string) (*domain.Shipment, error) {
	path := "/v1/orders/" + url.PathEscape(orderID) + "/tracking"
	logger := logging.FromContextOr(ctx, c.logger)

	logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	body, err := c.Get(ctx, path, Target{Entity: domain.ShipmentEntity, ID: orderID})
	if err != nil {
		return nil, err
	}

	ext, err := DecodeResponse[trackingResponse](body)
	if err != nil {
		return nil, fmt.Errorf("%s tracking for order %s: %w", c.ServiceName(), orderID, err)
	}

	shipment, err := translateShipment(orderID, ext)
	if err != nil {
		return nil, err
	}

	logger.Log(ctx, logging.LevelTrace, "translated carrier payload",
		slog.String("order_id", orderID),
		slog.String("status", string(shipment.Status)),
	)

	return shipment, nil
}

func translateShipment(orderID string, ext *trackingResponse) (*domain.Shipment, error) {
	if ext.TrackingNumber == "" {
		return nil, fmt.Errorf("carrier returned no tracking number for order %s", orderID)
	}

	status, ok := carrierStatuses[strings.ToUpper(ext.StatusCode)]
	if !ok {
		status = domain.ShipmentStatusUnknown
	}

	events, err := TranslateSlice(ext.Events, translateEvent)
	if err != nil {
		return nil, err
	}

	return &domain.Shipment{
		OrderID:        orderID,
		TrackingNumber: ext.TrackingNumber,
		Carrier:        ext.Carrier,
		Status:         status,
		EstimatedAt:    ext.EstimatedDelivery,
		Events:         events,
	}, nil
}

func translateEvent(ext *trackingEvent) (domain.ShipmentEvent, error) {
	if ext.Timestamp.IsZero() {
		return domain.ShipmentEvent{}, fmt.Errorf("event %q has no timestamp", ext.Description)
	}

	return domain.ShipmentEvent{
		At:       ext.Timestamp,
		Location: ext.Location,
		Note:     ext.Description,
	}, nil
}

// Name implements ports.HealthChecker.
func (c *CarrierClient) Name() string {
	return c.ServiceName()
}

// Check implements ports.HealthChecker by calling the carrier's health endpoint.
func (c *CarrierClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, "/v1/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", c.ServiceName(), resp.StatusCode)
	}

	return nil
}
