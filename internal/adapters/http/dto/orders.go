package dto

import (
	"time"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Customer string             `json:"customer" validate:"required,notempty,max=100"`
	Email    string             `json:"email"    validate:"required,email"`
	Currency string             `json:"currency" validate:"required,iso4217"`
	Items    []OrderItemRequest `json:"items"    validate:"required,min=1,dive"`
	Notes    string             `json:"notes"    validate:"max=500"`
}

// OrderItemRequest is a single line of CreateOrderRequest.
type OrderItemRequest struct {
	SKU        string `json:"sku"        validate:"required,notempty"`
	Quantity   int    `json:"quantity"   validate:"gte=1,lte=1000"`
	PriceCents int64  `json:"priceCents" validate:"gte=0"`
}

// Validate rejects duplicate SKUs.
func (r *CreateOrderRequest) Validate() error {
	seen := make(map[string]bool, len(r.Items))
	verr := &domain.ValidationError{}

	for _, item := range r.Items {
		if seen[item.SKU] {
			verr.Add("items", "duplicate sku "+item.SKU)
		}

		seen[item.SKU] = true
	}

	if verr.HasErrors() {
		return verr
	}

	return nil
}

// ToDomain converts the request into an order without ID or timestamps.
func (r *CreateOrderRequest) ToDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			SKU:        it.SKU,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}

	return &domain.Order{
		Customer: r.Customer,
		Email:    r.Email,
		Currency: r.Currency,
		Items:    items,
		Notes:    r.Notes,
	}
}

// OrderResponse is the JSON representation of an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	Customer   string              `json:"customer,omitempty"`
	Email      string              `json:"email,omitempty"`
	Status     string              `json:"status,omitempty"`
	Currency   string              `json:"currency,omitempty"`
	Items      []OrderItemResponse `json:"items,omitempty"`
	TotalCents int64               `json:"totalCents"`
	CreatedAt  *time.Time          `json:"createdAt,omitempty"`
}

// OrderItemResponse is a single order line.
type OrderItemResponse struct {
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// NewOrderResponse maps an order. A non-empty fields list restricts the
// output to those attributes; id and totalCents are always present.
func NewOrderResponse(o *domain.Order, fields []string) OrderResponse {
	want := func(name string) bool {
		if len(fields) == 0 {
			return true
		}

		for _, f := range fields {
			if f == name {
				return true
			}
		}

		return false
	}

	resp := OrderResponse{ID: o.ID, TotalCents: o.TotalCents()}

	if want("customer") {
		resp.Customer = o.Customer
	}

	if want("email") {
		resp.Email = o.Email
	}

	if want("status") {
		resp.Status = string(o.Status)
	}

	if want("currency") {
		resp.Currency = o.Currency
	}

	if want("created_at") && !o.CreatedAt.IsZero() {
		created := o.CreatedAt
		resp.CreatedAt = &created
	}

	if want("items") {
		for _, it := range o.Items {
			resp.Items = append(resp.Items, OrderItemResponse{
				SKU:        it.SKU,
				Quantity:   it.Quantity,
				PriceCents: it.PriceCents,
			})
		}
	}

	return resp
}
