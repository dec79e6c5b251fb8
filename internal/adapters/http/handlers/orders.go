package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/app"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
	"github.com/jsamuelsen/go-api-errors/internal/query"
)

const (
	problemContentType = "application/problem+json"
	textContentType    = "text/plain; charset=utf-8"
)

// orderFields is the default attribute set when no sparse fieldset is
// requested. Items are only returned with include=items.
var orderFields = []string{"customer", "email", "status", "currency", "created_at"}

// NewOrderQuerySpec returns the allow-list for GET /api/v1/orders.
func NewOrderQuerySpec() *query.Spec {
	return query.NewSpec("orders").
		AllowedFilters("status", "customer", "currency").
		AllowedFilterValues("status",
			string(domain.OrderStatusPending),
			string(domain.OrderStatusPaid),
			string(domain.OrderStatusShipped),
			string(domain.OrderStatusCancelled),
		).
		AllowedFields("customer", "email", "status", "currency", "created_at",
			"items.sku", "items.quantity", "items.price").
		AllowedIncludes("items").
		AllowedSorts("created_at", "total", "customer", "status")
}

// OrderHandler serves the orders API. Failures are pushed onto the gin
// context and rendered by the error handler middleware.
type OrderHandler struct {
	service   *app.OrderService
	responder ports.ResponseBuilder
	spec      *query.Spec
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(service *app.OrderService, responder ports.ResponseBuilder) *OrderHandler {
	return &OrderHandler{
		service:   service,
		responder: responder,
		spec:      NewOrderQuerySpec(),
	}
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	var page dto.PageRequest
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		fail(c, err)
		return
	}

	q, err := h.spec.Parse(c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}

	orders, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	cursor, err := page.DecodeCursor()
	if err != nil && !errors.Is(err, dto.ErrNoCursor) {
		fail(c, err)
		return
	}

	fields := selectedFields(q)
	result := dto.Paginate(orders, cursor, page.GetLimit(), func(o *domain.Order) string { return o.ID })

	items := make([]dto.OrderResponse, 0, len(result.Items))
	for _, o := range result.Items {
		items = append(items, dto.NewOrderResponse(o, fields))
	}

	c.JSON(http.StatusOK, h.responder.OK("Orders retrieved.", dto.Page[dto.OrderResponse]{
		Items:      items,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	}))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.responder.OK("Order retrieved.", dto.NewOrderResponse(order, nil)))
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		fail(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+order.ID)
	c.JSON(http.StatusCreated, h.responder.OK("Order created.", dto.NewOrderResponse(order, nil)))
}

// Cancel handles POST /orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.responder.OK("Order cancelled.", dto.NewOrderResponse(order, nil)))
}

// Delete handles DELETE /orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// invoiceResponse is the body of a successful invoice request.
type invoiceResponse struct {
	Number                string    `json:"number"`
	OrderID               string    `json:"orderId"`
	Currency              string    `json:"currency"`
	TotalCents            int64     `json:"totalCents"`
	CustomerLifetimeCents int64     `json:"customerLifetimeCents"`
	IssuedAt              time.Time `json:"issuedAt"`
}

// problem is an RFC 9457 problem document.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Invoice handles GET /orders/:id/invoice.
//
// Orders that cannot be billed are answered with a prepared response: a
// problem document while the order may still be paid, plain text once it is
// cancelled.
func (h *OrderHandler) Invoice(c *gin.Context) {
	inv, err := h.service.Invoice(c.Request.Context(), c.Param("id"))
	if errors.Is(err, app.ErrNotBillable) {
		fail(c, notBillableResponse(c.Param("id"), err))
		return
	}

	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.responder.OK("Invoice issued.", invoiceResponse{
		Number:                inv.Number,
		OrderID:               inv.Order.ID,
		Currency:              inv.Order.Currency,
		TotalCents:            inv.TotalCents,
		CustomerLifetimeCents: inv.CustomerLifetimeCents,
		IssuedAt:              inv.IssuedAt,
	}))
}

func notBillableResponse(id string, err error) *apierror.ResponseError {
	var nb *app.NotBillableError
	if errors.As(err, &nb) && nb.Status == domain.OrderStatusCancelled {
		return apierror.NewResponseError(http.StatusGone, textContentType,
			[]byte("Invoice voided: order "+id+" was cancelled."))
	}

	body, _ := json.Marshal(problem{
		Type:   "about:blank",
		Title:  "Invoice unavailable",
		Status: http.StatusConflict,
		Detail: err.Error(),
	})

	return apierror.NewResponseError(http.StatusConflict, problemContentType, body)
}

// shipmentResponse is the body of a successful tracking request.
type shipmentResponse struct {
	OrderID        string                  `json:"orderId"`
	TrackingNumber string                  `json:"trackingNumber"`
	Carrier        string                  `json:"carrier,omitempty"`
	Status         string                  `json:"status"`
	Delivered      bool                    `json:"delivered"`
	EstimatedAt    *time.Time              `json:"estimatedAt,omitempty"`
	Events         []shipmentEventResponse `json:"events"`
}

type shipmentEventResponse struct {
	At       time.Time `json:"at"`
	Location string    `json:"location,omitempty"`
	Note     string    `json:"note,omitempty"`
}

// Shipment handles GET /orders/:id/shipment.
func (h *OrderHandler) Shipment(c *gin.Context) {
	id := c.Param("id")

	shipment, err := h.service.Shipment(c.Request.Context(), id)

	switch {
	case errors.Is(err, app.ErrNotShipped):
		fail(c, apierror.NewHTTPError(http.StatusConflict, "Order "+id+" has not shipped yet.").Wrap(err))
		return
	case errors.Is(err, app.ErrTrackingDisabled):
		fail(c, apierror.NewHTTPError(http.StatusNotImplemented, "").Wrap(err))
		return
	case err != nil:
		fail(c, err)
		return
	}

	events := make([]shipmentEventResponse, 0, len(shipment.Events))
	for _, e := range shipment.Events {
		events = append(events, shipmentEventResponse{At: e.At, Location: e.Location, Note: e.Note})
	}

	c.JSON(http.StatusOK, h.responder.OK("Shipment retrieved.", shipmentResponse{
		OrderID:        shipment.OrderID,
		TrackingNumber: shipment.TrackingNumber,
		Carrier:        shipment.Carrier,
		Status:         string(shipment.Status),
		Delivered:      shipment.Delivered(),
		EstimatedAt:    shipment.EstimatedAt,
		Events:         events,
	}))
}

// RegisterRoutes registers the order routes on rg. Guard runs before
// destructive routes.
//   - GET    /orders
//   - POST   /orders
//   - GET    /orders/:id
//   - DELETE /orders/:id
//   - POST   /orders/:id/cancel
//   - GET    /orders/:id/invoice
//   - GET    /orders/:id/shipment
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.GET("", h.List)
	orders.POST("", h.Create)
	orders.GET("/:id", h.Get)
	orders.DELETE("/:id", append(slices.Clone(guard), h.Delete)...)
	orders.POST("/:id/cancel", h.Cancel)
	orders.GET("/:id/invoice", h.Invoice)
	orders.GET("/:id/shipment", h.Shipment)
}

func selectedFields(q *query.Query) []string {
	fields := q.Fields["orders"]
	if len(fields) == 0 {
		fields = orderFields
	}

	if slices.Contains(q.Includes, "items") {
		return append(slices.Clone(fields), "items")
	}

	return fields
}

// fail records err for the error handler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
