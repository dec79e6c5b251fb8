// Package memory provides in-memory repository adapters.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

// OrderRepository stores orders in memory. It is safe for concurrent use.
// Orders are copied on the way in and out so callers never share state with
// the store.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	order  []string
}

// NewOrderRepository creates a repository holding seed.
func NewOrderRepository(seed ...*domain.Order) *OrderRepository {
	r := &OrderRepository{orders: make(map[string]*domain.Order, len(seed))}
	for _, o := range seed {
		r.put(o)
	}

	return r
}

// Get implements ports.OrderRepository.
func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.OrderEntity, id)
	}

	return clone(o), nil
}

// List implements ports.OrderRepository.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.orders[id]))
	}

	return out, nil
}

// Save implements ports.OrderRepository.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if order == nil || order.ID == "" {
		return domain.NewValidationError("id", "is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(order)

	return nil
}

// Delete implements ports.OrderRepository.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return domain.NewNotFoundError(domain.OrderEntity, id)
	}

	delete(r.orders, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	return nil
}

// Name implements ports.HealthChecker.
func (r *OrderRepository) Name() string {
	return "orders-store"
}

// Check implements ports.HealthChecker.
func (r *OrderRepository) Check(ctx context.Context) error {
	return ctx.Err()
}

func (r *OrderRepository) put(o *domain.Order) {
	if _, exists := r.orders[o.ID]; !exists {
		r.order = append(r.order, o.ID)
	}

	r.orders[o.ID] = clone(o)
}

func clone(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)

	return &c
}
