package domain

import "time"

// OrderEntity is the entity name reported by order lookups.
const OrderEntity = "Order"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem is a single order line.
type OrderItem struct {
	SKU        string
	Quantity   int
	PriceCents int64
}

// Order is a customer order.
type Order struct {
	ID        string
	Customer  string
	Email     string
	Status    OrderStatus
	Currency  string
	Items     []OrderItem
	Notes     string
	CreatedAt time.Time
}

// TotalCents sums the order lines.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.PriceCents
	}

	return total
}

// Cancel moves the order to cancelled.
// Shipped and already cancelled orders cannot be cancelled.
func (o *Order) Cancel() error {
	switch o.Status {
	case OrderStatusShipped:
		return NewValidationError("status", "shipped orders cannot be cancelled")
	case OrderStatusCancelled:
		return NewValidationError("status", "order is already cancelled")
	case OrderStatusPending, OrderStatusPaid:
	}

	o.Status = OrderStatusCancelled

	return nil
}
