// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Storage details (that's repository adapters)
//   - Core domain logic (that's the domain layer)
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
	"github.com/jsamuelsen/go-api-errors/internal/query"
)

// ErrNotBillable is returned by Invoice for orders that have not been paid
// or were cancelled.
var ErrNotBillable = errors.New("order is not billable")

// NotBillableError reports the status that prevented invoicing.
type NotBillableError struct {
	OrderID string
	Status  domain.OrderStatus
}

// Error implements the error interface.
func (e *NotBillableError) Error() string {
	return fmt.Sprintf("invoice for order %s in status %s: %s", e.OrderID, e.Status, ErrNotBillable)
}

// Unwrap returns ErrNotBillable.
func (e *NotBillableError) Unwrap() error { return ErrNotBillable }

// ErrNotShipped is returned by Shipment for orders that have not shipped.
var ErrNotShipped = errors.New("order has not shipped")

// ErrTrackingDisabled is returned by Shipment when no carrier is configured.
var ErrTrackingDisabled = errors.New("shipment tracking is disabled")

// Invoice is the billing view of an order.
type Invoice struct {
	Number                string
	Order                 *domain.Order
	TotalCents            int64
	CustomerLifetimeCents int64
	IssuedAt              time.Time
}

// OrderService implements the order use cases.
type OrderService struct {
	repo    ports.OrderRepository
	tracker ports.ShipmentTracker
	logger  *slog.Logger
	now     func() time.Time
}

// OrderServiceConfig holds optional configuration for the service.
type OrderServiceConfig struct {
	Logger *slog.Logger
	Clock  func() time.Time

	// Tracker looks up shipments. Nil disables Shipment.
	Tracker ports.ShipmentTracker
}

// NewOrderService creates an OrderService.
func NewOrderService(repo ports.OrderRepository, cfg *OrderServiceConfig) *OrderService {
	logger := slog.Default()
	now := time.Now

	var tracker ports.ShipmentTracker

	if cfg != nil {
		tracker = cfg.Tracker

		if cfg.Logger != nil {
			logger = cfg.Logger
		}

		if cfg.Clock != nil {
			now = cfg.Clock
		}
	}

	return &OrderService{
		repo:    repo,
		tracker: tracker,
		logger:  logger.With(slog.String("component", "app.OrderService")),
		now:     now,
	}
}

func (s *OrderService) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

// Get returns one order. Identifiers that are not UUIDs cannot exist and
// are reported as not found without a lookup.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewNotFoundError(domain.OrderEntity, id)
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	return order, nil
}

// List returns the orders matching q's filters in q's sort order. Without a
// sort, orders are returned oldest first.
func (s *OrderService) List(ctx context.Context, q *query.Query) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	if q == nil {
		q = &query.Query{}
	}

	orders = slices.DeleteFunc(orders, func(o *domain.Order) bool {
		return !matches(o, q.Filters)
	})

	sorts := q.Sorts
	if len(sorts) == 0 {
		sorts = []query.Sort{{Field: "created_at"}}
	}

	slices.SortStableFunc(orders, func(a, b *domain.Order) int {
		for _, sort := range sorts {
			c := compareOrders(a, b, sort.Field)
			if sort.Descending {
				c = -c
			}

			if c != 0 {
				return c
			}
		}

		return 0
	})

	return orders, nil
}

func matches(o *domain.Order, filters map[string][]string) bool {
	for name, values := range filters {
		var actual string

		switch name {
		case "status":
			actual = string(o.Status)
		case "customer":
			actual = o.Customer
		case "currency":
			actual = o.Currency
		default:
			continue
		}

		if !slices.ContainsFunc(values, func(v string) bool { return strings.EqualFold(v, actual) }) {
			return false
		}
	}

	return true
}

func compareOrders(a, b *domain.Order, field string) int {
	switch field {
	case "total":
		return cmp.Compare(a.TotalCents(), b.TotalCents())
	case "customer":
		return cmp.Compare(a.Customer, b.Customer)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Create stores a new pending order and returns it.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}

	s.log(ctx).InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_cents", order.TotalCents()),
	)

	return order, nil
}

// Cancel cancels an order.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(); err != nil {
		return nil, fmt.Errorf("cancelling order %s: %w", id, err)
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}

	return order, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	s.log(ctx).InfoContext(ctx, "deleting order", slog.String("order_id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	return nil
}

// Invoice builds the invoice of a paid or shipped order. The order and the
// customer's order history are loaded concurrently.
func (s *OrderService) Invoice(ctx context.Context, id string) (*Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewNotFoundError(domain.OrderEntity, id)
	}

	order, history, err := Parallel2(ctx,
		func(ctx context.Context) (*domain.Order, error) { return s.repo.Get(ctx, id) },
		func(ctx context.Context) ([]*domain.Order, error) { return s.repo.List(ctx) },
	)
	if err != nil {
		return nil, fmt.Errorf("loading invoice data: %w", err)
	}

	if order.Status != domain.OrderStatusPaid && order.Status != domain.OrderStatusShipped {
		return nil, &NotBillableError{OrderID: id, Status: order.Status}
	}

	var lifetime int64

	for _, o := range history {
		if o.Customer == order.Customer && o.Status != domain.OrderStatusCancelled {
			lifetime += o.TotalCents()
		}
	}

	return &Invoice{
		Number:                "INV-" + strings.ToUpper(order.ID[:8]),
		Order:                 order,
		TotalCents:            order.TotalCents(),
		CustomerLifetimeCents: lifetime,
		IssuedAt:              s.now().UTC(),
	}, nil
}

// Shipment returns the carrier view of a shipped order. Carrier failures
// are returned unchanged so the caller sees what the carrier reported.
func (s *OrderService) Shipment(ctx context.Context, id string) (*domain.Shipment, error) {
	if s.tracker == nil {
		return nil, ErrTrackingDisabled
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusShipped {
		return nil, fmt.Errorf("tracking order %s in status %s: %w", id, order.Status, ErrNotShipped)
	}

	shipment, err := s.tracker.Track(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("tracking order %s: %w", id, err)
	}

	return shipment, nil
}
