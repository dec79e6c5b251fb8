// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for operations that may block
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrValidation, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

// OrderRepository persists orders.
type OrderRepository interface {
	// Get retrieves an order by its identifier.
	// Returns a *domain.NotFoundError if the order does not exist.
	Get(ctx context.Context, id string) (*domain.Order, error)

	// List returns all orders in insertion order.
	List(ctx context.Context) ([]*domain.Order, error)

	// Save creates or replaces an order.
	Save(ctx context.Context, order *domain.Order) error

	// Delete removes an order by its identifier.
	// Returns a *domain.NotFoundError if the order does not exist.
	Delete(ctx context.Context, id string) error
}

// ShipmentTracker looks up parcels at the shipping carrier.
type ShipmentTracker interface {
	// Track returns the shipment for an order.
	// Returns a *domain.NotFoundError if the carrier has no parcel for it.
	Track(ctx context.Context, orderID string) (*domain.Shipment, error)
}
