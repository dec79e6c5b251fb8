package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-api-errors/internal/adapters/memory"
	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/app"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/query"
)

const (
	paidID      = "0b5e7a52-6f1d-4b8e-9a51-1f0c2d3e4a5b"
	pendingID   = "6c1f9d3e-2a4b-4c5d-8e6f-7a8b9c0d1e2f"
	cancelledID = "9f8e7d6c-5b4a-4392-8170-6e5d4c3b2a19"
	unknownID   = "11111111-2222-4333-8444-555555555555"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool                `json:"success"`
	Message any                 `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// orderServer wires the handler to an in-memory store and records the last
// error pushed onto the context.
type orderServer struct {
	engine  *gin.Engine
	lastErr error
}

func newOrderServer(t *testing.T, guard ...gin.HandlerFunc) *orderServer {
	t.Helper()

	repo := memory.NewOrderRepository(
		&domain.Order{
			ID: paidID, Customer: "ada", Email: "ada@example.com", Status: domain.OrderStatusPaid,
			Currency: "EUR", Items: []domain.OrderItem{{SKU: "a", Quantity: 2, PriceCents: 500}},
			CreatedAt: now.Add(-3 * time.Hour),
		},
		&domain.Order{
			ID: pendingID, Customer: "bob", Email: "bob@example.com", Status: domain.OrderStatusPending,
			Currency: "USD", Items: []domain.OrderItem{{SKU: "b", Quantity: 1, PriceCents: 2500}},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		&domain.Order{
			ID: cancelledID, Customer: "ada", Email: "ada@example.com", Status: domain.OrderStatusCancelled,
			Currency: "EUR", Items: []domain.OrderItem{{SKU: "c", Quantity: 3, PriceCents: 100}},
			CreatedAt: now.Add(-1 * time.Hour),
		},
	)

	svc := app.NewOrderService(repo, &app.OrderServiceConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  func() time.Time { return now },
	})

	s := &orderServer{engine: gin.New()}
	s.engine.Use(func(c *gin.Context) {
		c.Next()

		if last := c.Errors.Last(); last != nil {
			s.lastErr = last.Err
		}
	})

	NewOrderHandler(svc, dto.NewResponder()).RegisterRoutes(s.engine.Group("/api/v1"), guard...)

	return s
}

func (s *orderServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return env
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) dto.Page[dto.OrderResponse] {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var page dto.Page[dto.OrderResponse]
	require.NoError(t, json.Unmarshal(env.Data, &page))

	return page
}

func pageIDs(page dto.Page[dto.OrderResponse]) []string {
	out := make([]string, len(page.Items))
	for i, item := range page.Items {
		out[i] = item.ID
	}

	return out
}

func TestOrderHandler_List(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "default order", target: "/api/v1/orders", want: []string{paidID, pendingID, cancelledID}},
		{name: "filter", target: "/api/v1/orders?filter[customer]=ada", want: []string{paidID, cancelledID}},
		{name: "sort", target: "/api/v1/orders?sort=-total", want: []string{pendingID, paidID, cancelledID}},
		{name: "limit", target: "/api/v1/orders?limit=1", want: []string{paidID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newOrderServer(t)

			w := s.do(http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, pageIDs(decodePage(t, w)))
			assert.NoError(t, s.lastErr)
		})
	}
}

func TestOrderHandler_List_Cursor(t *testing.T) {
	s := newOrderServer(t)

	first := decodePage(t, s.do(http.MethodGet, "/api/v1/orders?limit=2", ""))
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second := decodePage(t, s.do(http.MethodGet, "/api/v1/orders?limit=2&cursor="+first.NextCursor, ""))
	assert.Equal(t, []string{cancelledID}, pageIDs(second))
	assert.False(t, second.HasMore)
}

func TestOrderHandler_List_SparseFields(t *testing.T) {
	s := newOrderServer(t)

	page := decodePage(t, s.do(http.MethodGet, "/api/v1/orders?fields[orders]=status&include=items", ""))
	require.Len(t, page.Items, 3)

	first := page.Items[0]
	assert.Equal(t, "paid", first.Status)
	assert.Empty(t, first.Customer)
	assert.Len(t, first.Items, 1)

	plain := decodePage(t, s.do(http.MethodGet, "/api/v1/orders", ""))
	assert.Empty(t, plain.Items[0].Items)
	assert.Equal(t, "ada", plain.Items[0].Customer)
}

func TestOrderHandler_List_Errors(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantKind  apierror.Kind
		queryKind query.ErrorKind
	}{
		{
			name:      "unknown filter",
			target:    "/api/v1/orders?filter[color]=red",
			wantKind:  apierror.KindMalformedQuery,
			queryKind: query.InvalidFilterQuery,
		},
		{
			name:      "unknown sort",
			target:    "/api/v1/orders?sort=email",
			wantKind:  apierror.KindMalformedQuery,
			queryKind: query.InvalidSortQuery,
		},
		{
			name:      "unknown append",
			target:    "/api/v1/orders?append=margin",
			wantKind:  apierror.KindMalformedQuery,
			queryKind: query.InvalidAppendQuery,
		},
		{
			name:      "relation fields without include",
			target:    "/api/v1/orders?fields[items]=sku",
			wantKind:  apierror.KindMalformedQuery,
			queryKind: query.UnknownIncludedFields,
		},
		{name: "limit out of range", target: "/api/v1/orders?limit=500", wantKind: apierror.KindValidationFailed},
		{name: "garbage cursor", target: "/api/v1/orders?cursor=%21%21", wantKind: apierror.KindValidationFailed},
		{name: "non numeric limit", target: "/api/v1/orders?limit=ten", wantKind: apierror.KindGenericHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newOrderServer(t)

			w := s.do(http.MethodGet, tt.target, "")

			require.Error(t, s.lastErr)
			assert.Equal(t, tt.wantKind, apierror.Classify(s.lastErr))
			assert.Zero(t, w.Body.Len())

			if tt.queryKind != 0 {
				var qerr *query.Error
				require.ErrorAs(t, s.lastErr, &qerr)
				assert.Equal(t, tt.queryKind, qerr.Kind)
			}
		})
	}
}

func TestOrderHandler_Get(t *testing.T) {
	s := newOrderServer(t)

	w := s.do(http.MethodGet, "/api/v1/orders/"+paidID, "")

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Order retrieved.", env.Message)

	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, int64(1000), order.TotalCents)
	assert.Len(t, order.Items, 1)
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	for _, id := range []string{unknownID, "not-a-uuid"} {
		t.Run(id, func(t *testing.T) {
			s := newOrderServer(t)

			s.do(http.MethodGet, "/api/v1/orders/"+id, "")

			assert.Equal(t, apierror.KindEntityNotFound, apierror.Classify(s.lastErr))
		})
	}
}

func TestOrderHandler_Create(t *testing.T) {
	s := newOrderServer(t)

	w := s.do(http.MethodPost, "/api/v1/orders",
		`{"customer":"cy","email":"cy@example.com","currency":"EUR","items":[{"sku":"x","quantity":2,"priceCents":150}]}`)

	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "Order created.", env.Message)

	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, int64(300), order.TotalCents)
	assert.Equal(t, "/api/v1/orders/"+order.ID, w.Header().Get("Location"))

	got := s.do(http.MethodGet, "/api/v1/orders/"+order.ID, "")
	assert.Equal(t, http.StatusOK, got.Code)
}

func TestOrderHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind apierror.Kind
	}{
		{name: "invalid json", body: `{"customer":`, wantKind: apierror.KindGenericHTTP},
		{name: "missing fields", body: `{}`, wantKind: apierror.KindValidationFailed},
		{
			name:     "duplicate sku",
			body:     `{"customer":"cy","email":"cy@example.com","currency":"EUR","items":[{"sku":"x","quantity":1},{"sku":"x","quantity":1}]}`,
			wantKind: apierror.KindValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newOrderServer(t)

			s.do(http.MethodPost, "/api/v1/orders", tt.body)

			assert.Equal(t, tt.wantKind, apierror.Classify(s.lastErr))
		})
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	s := newOrderServer(t)

	w := s.do(http.MethodPost, "/api/v1/orders/"+pendingID+"/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)

	s.do(http.MethodPost, "/api/v1/orders/"+cancelledID+"/cancel", "")
	assert.Equal(t, apierror.KindValidationFailed, apierror.Classify(s.lastErr))
}

func TestOrderHandler_Delete(t *testing.T) {
	s := newOrderServer(t)

	w := s.do(http.MethodDelete, "/api/v1/orders/"+paidID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	s.do(http.MethodDelete, "/api/v1/orders/"+paidID, "")
	assert.Equal(t, apierror.KindEntityNotFound, apierror.Classify(s.lastErr))
}

func TestOrderHandler_Delete_Guard(t *testing.T) {
	denied := domain.NewAuthorizationError("DELETE /api/v1/orders/:id", "role admin required")
	s := newOrderServer(t, func(c *gin.Context) { fail(c, denied) })

	w := s.do(http.MethodDelete, "/api/v1/orders/"+paidID, "")

	assert.Zero(t, w.Body.Len())
	assert.Equal(t, apierror.KindUnauthorized, apierror.Classify(s.lastErr))

	still := s.do(http.MethodGet, "/api/v1/orders/"+paidID, "")
	assert.Equal(t, http.StatusOK, still.Code)
}

func TestOrderHandler_Invoice(t *testing.T) {
	s := newOrderServer(t)

	w := s.do(http.MethodGet, "/api/v1/orders/"+paidID+"/invoice", "")

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)

	var inv invoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, "INV-0B5E7A52", inv.Number)
	assert.Equal(t, int64(1000), inv.CustomerLifetimeCents)
	assert.Equal(t, now, inv.IssuedAt)
}

func TestOrderHandler_Invoice_NotBillable(t *testing.T) {
	t.Run("pending order gets a problem document", func(t *testing.T) {
		s := newOrderServer(t)

		s.do(http.MethodGet, "/api/v1/orders/"+pendingID+"/invoice", "")

		var re *apierror.ResponseError
		require.ErrorAs(t, s.lastErr, &re)
		assert.Equal(t, http.StatusConflict, re.StatusCode())
		assert.True(t, re.Response.IsJSON())
		assert.Equal(t, problemContentType, re.Response.Header.Get("Content-Type"))

		var p problem
		require.NoError(t, json.Unmarshal(re.Response.Body, &p))
		assert.Equal(t, "Invoice unavailable", p.Title)
		assert.Contains(t, p.Detail, "pending")
	})

	t.Run("cancelled order gets plain text", func(t *testing.T) {
		s := newOrderServer(t)

		s.do(http.MethodGet, "/api/v1/orders/"+cancelledID+"/invoice", "")

		var re *apierror.ResponseError
		require.ErrorAs(t, s.lastErr, &re)
		assert.Equal(t, http.StatusGone, re.StatusCode())
		assert.False(t, re.Response.IsJSON())
		assert.Equal(t, apierror.KindWrappedResponse, apierror.Classify(re))
	})

	t.Run("unknown order", func(t *testing.T) {
		s := newOrderServer(t)

		s.do(http.MethodGet, "/api/v1/orders/"+unknownID+"/invoice", "")

		assert.Equal(t, apierror.KindEntityNotFound, apierror.Classify(s.lastErr))
	})
}

func TestNewOrderQuerySpec(t *testing.T) {
	q, err := NewOrderQuerySpec().Parse(map[string][]string{
		"filter[status]": {"paid,shipped"},
		"include":        {"items"},
		"fields[items]":  {"sku"},
		"sort":           {"-created_at"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"paid", "shipped"}, q.Filters["status"])
	assert.Equal(t, []string{"sku"}, q.Fields["items"])
	assert.Equal(t, []query.Sort{{Field: "created_at", Descending: true}}, q.Sorts)

	_, err = NewOrderQuerySpec().Parse(map[string][]string{"filter[status]": {"lost"}})
	require.Error(t, err)
}
