package dto

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponder_OK(t *testing.T) {
	env := NewResponder().OK("created", map[string]string{"id": "1"})

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"created","data":{"id":"1"},"errors":null}`, string(body))
}

func TestResponder_Error(t *testing.T) {
	env := NewResponder().Error("Order not found.", http.StatusNotFound)

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Order not found.","data":null,"errors":null}`, string(body))
}

func TestResponder_WithErrors(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		fields   map[string][]string
		expected string
	}{
		{
			name:     "single message is a string",
			messages: []string{"required"},
			fields:   map[string][]string{"email": {"required"}},
			expected: `{"success":false,"message":"required","data":null,"errors":{"email":["required"]}}`,
		},
		{
			name:     "several messages are an array",
			messages: []string{"required", "too short"},
			fields:   map[string][]string{"email": {"required"}, "name": {"too short"}},
			expected: `{"success":false,"message":["required","too short"],"data":null,"errors":{"email":["required"],"name":["too short"]}}`,
		},
		{
			name:     "nil fields become an empty object",
			messages: []string{"The given data was invalid."},
			expected: `{"success":false,"message":"The given data was invalid.","data":null,"errors":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(NewResponder().WithErrors(tt.messages, tt.fields))
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(body))
		})
	}
}

func TestResponder_WithErrorsCopiesMessages(t *testing.T) {
	messages := []string{"a", "b"}
	env := NewResponder().WithErrors(messages, nil)
	messages[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, env.Message)
}

func TestBindAndValidate(t *testing.T) {
	type testStruct struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"email"`
	}

	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantKind   apierror.Kind
		wantFields []string
	}{
		{
			name: "valid JSON",
			body: `{"name":"John","email":"john@example.com"}`,
		},
		{
			name:     "invalid JSON",
			body:     `{invalid}`,
			wantErr:  true,
			wantKind: apierror.KindGenericHTTP,
		},
		{
			name:       "validation fails",
			body:       `{"name":"","email":"john@example.com"}`,
			wantErr:    true,
			wantKind:   apierror.KindValidationFailed,
			wantFields: []string{"name"},
		},
		{
			name:       "invalid email",
			body:       `{"name":"John","email":"not-an-email"}`,
			wantErr:    true,
			wantKind:   apierror.KindValidationFailed,
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var input testStruct
			err := BindAndValidate(c, &input)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "John", input.Name)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apierror.Classify(err))

			if tt.wantKind == apierror.KindGenericHTTP {
				require.ErrorIs(t, err, ErrBinding)
			}

			var vErr *domain.ValidationError
			if len(tt.wantFields) > 0 {
				require.ErrorAs(t, err, &vErr)

				for _, f := range tt.wantFields {
					assert.Contains(t, vErr.Fields, f)
				}
			}
		})
	}
}

func TestBindAndValidate_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

	var input struct {
		Name string `json:"name"`
	}

	err := BindAndValidate(c, &input)

	var he *apierror.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusRequestEntityTooLarge, he.StatusCode())
	assert.ErrorIs(t, err, ErrBinding)
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		field   string
	}{
		{name: "empty query"},
		{name: "valid limit", query: "?limit=10"},
		{name: "limit out of range", query: "?limit=150", wantErr: true, field: "limit"},
		{name: "negative limit", query: "?limit=-1", wantErr: true, field: "limit"},
		{name: "garbage cursor", query: "?cursor=%21%21", wantErr: true, field: "cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil)

			var page PageRequest
			err := BindQueryAndValidate(c, &page)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestBindQueryAndValidate_NonNumericLimit(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders?limit=ten", nil)

	var page PageRequest
	err := BindQueryAndValidate(c, &page)

	require.ErrorIs(t, err, ErrBinding)
	assert.Equal(t, apierror.KindGenericHTTP, apierror.Classify(err))
}

func TestCreateOrderRequest(t *testing.T) {
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			Customer: "Acme",
			Email:    "ops@acme.test",
			Currency: "EUR",
			Items:    []OrderItemRequest{{SKU: "A-1", Quantity: 2, PriceCents: 500}},
		}
	}

	t.Run("valid", func(t *testing.T) {
		req := valid()
		require.NoError(t, ValidateAll(&req))

		order := req.ToDomain()
		assert.Equal(t, "Acme", order.Customer)
		assert.Equal(t, int64(1000), order.TotalCents())
	})

	t.Run("unknown currency", func(t *testing.T) {
		req := valid()
		req.Currency = "ZZZ"

		var vErr *domain.ValidationError
		require.ErrorAs(t, ValidateAll(&req), &vErr)
		assert.Equal(t, []string{"must be a valid ISO 4217 currency code"}, vErr.Fields["currency"])
	})

	t.Run("duplicate sku", func(t *testing.T) {
		req := valid()
		req.Items = append(req.Items, OrderItemRequest{SKU: "A-1", Quantity: 1})

		var vErr *domain.ValidationError
		require.ErrorAs(t, ValidateAll(&req), &vErr)
		assert.Equal(t, []string{"duplicate sku A-1"}, vErr.Fields["items"])
	})
}

func TestNewOrderResponse(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order := &domain.Order{
		ID:        "o-1",
		Customer:  "Acme",
		Email:     "ops@acme.test",
		Status:    domain.OrderStatusPending,
		Currency:  "EUR",
		Items:     []domain.OrderItem{{SKU: "A-1", Quantity: 2, PriceCents: 500}},
		CreatedAt: created,
	}

	full := NewOrderResponse(order, nil)
	assert.Equal(t, "Acme", full.Customer)
	assert.Equal(t, "pending", full.Status)
	assert.Len(t, full.Items, 1)
	assert.Equal(t, &created, full.CreatedAt)

	sparse := NewOrderResponse(order, []string{"status"})
	assert.Equal(t, "o-1", sparse.ID)
	assert.Equal(t, "pending", sparse.Status)
	assert.Empty(t, sparse.Customer)
	assert.Empty(t, sparse.Items)
	assert.Equal(t, int64(1000), sparse.TotalCents)
}

func TestPageRequest_GetLimit(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{limit: 0, expected: DefaultLimit},
		{limit: -5, expected: DefaultLimit},
		{limit: 10, expected: 10},
		{limit: 500, expected: MaxLimit},
	}

	for _, tt := range tests {
		p := PageRequest{Limit: tt.limit}
		assert.Equal(t, tt.expected, p.GetLimit())
	}
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(&Cursor{After: "o-2"})

	c, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "o-2", c.After)

	assert.Empty(t, EncodeCursor(nil))
}

func TestDecodeCursor_Errors(t *testing.T) {
	_, err := DecodeCursor("")
	require.ErrorIs(t, err, ErrNoCursor)

	_, err = DecodeCursor("not base64!")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = DecodeCursor(base64.URLEncoding.EncodeToString([]byte("{}")))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	id := func(s string) string { return s }

	first := Paginate(items, nil, 2, id)
	assert.Equal(t, []string{"a", "b"}, first.Items)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	cursor, err := DecodeCursor(first.NextCursor)
	require.NoError(t, err)

	second := Paginate(items, cursor, 2, id)
	assert.Equal(t, []string{"c", "d"}, second.Items)

	last := Paginate(items, &Cursor{After: "d"}, 2, id)
	assert.Equal(t, []string{"e"}, last.Items)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)

	empty := Paginate([]string{}, nil, 2, id)
	assert.Equal(t, []string{}, empty.Items)
}
