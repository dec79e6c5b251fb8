package apierror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_StatusTable(t *testing.T) {
	tests := []struct {
		kind    Kind
		name    string
		status  int
		carries bool
	}{
		{KindWrappedResponse, "wrapped_response", 0, true},
		{KindEntityNotFound, "entity_not_found", http.StatusNotFound, false},
		{KindRouteNotFound, "route_not_found", http.StatusNotFound, false},
		{KindMethodNotAllowed, "method_not_allowed", http.StatusMethodNotAllowed, false},
		{KindValidationFailed, "validation_failed", http.StatusUnprocessableEntity, false},
		{KindUnauthenticated, "unauthenticated", http.StatusUnauthorized, false},
		{KindUnauthorized, "unauthorized", http.StatusForbidden, false},
		{KindMalformedQuery, "malformed_query", http.StatusBadRequest, false},
		{KindGenericHTTP, "generic_http_error", 0, true},
		{KindUnclassified, "unclassified", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.status, tt.kind.DefaultStatus())
			assert.Equal(t, tt.carries, tt.kind.CarriesStatus())
			assert.True(t, tt.kind.Valid())
		})
	}
}

func TestKinds_PrecedenceOrder(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 10)

	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1], kinds[i])
	}
}

func TestKind_Unknown(t *testing.T) {
	k := Kind(42)

	assert.False(t, k.Valid())
	assert.False(t, k.CarriesStatus())
	assert.Equal(t, "Kind(42)", k.String())
	assert.Empty(t, k.ConfigName())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.ConfigName())
		assert.True(t, ok, k.ConfigName())
		assert.Equal(t, k, got)
	}

	_, ok := ParseKind("nope")
	assert.False(t, ok)
}

func TestParseStatusKey(t *testing.T) {
	tests := map[string]Kind{
		"model_not_found":    KindEntityNotFound,
		"resource_not_found": KindRouteNotFound,
		"method_not_allowed": KindMethodNotAllowed,
		"validation":         KindValidationFailed,
		"authentication":     KindUnauthenticated,
		"authorization":      KindUnauthorized,
		"bad_request":        KindMalformedQuery,
		"server_error":       KindUnclassified,
	}

	for key, expected := range tests {
		got, ok := ParseStatusKey(key)
		assert.True(t, ok, key)
		assert.Equal(t, expected, got, key)
	}

	_, ok := ParseStatusKey("http_response")
	assert.False(t, ok)
}

func TestWrappedResponse_IsJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		expected    bool
	}{
		{"json", "application/json", `{"a":1}`, true},
		{"json with charset", "application/json; charset=utf-8", `[1,2]`, true},
		{"problem json", "application/problem+json", `{"title":"x"}`, true},
		{"invalid body", "application/json", `{oops`, false},
		{"html", "text/html", `<p>hi</p>`, false},
		{"missing content type", "", `{"a":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponseError(http.StatusOK, tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.expected, r.Response.IsJSON())
		})
	}
}

func TestResponseError_StatusCode(t *testing.T) {
	r := NewResponseError(http.StatusTeapot, "text/plain", nil)
	assert.Equal(t, http.StatusTeapot, r.StatusCode())

	r.Status = 0
	r.Response.StatusCode = http.StatusAccepted
	assert.Equal(t, http.StatusAccepted, r.StatusCode())
	assert.Contains(t, r.Error(), "202")
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPError(http.StatusTooManyRequests, "").WithHeader("Retry-After", "30")

	assert.Equal(t, "Too Many Requests", err.Error())
	assert.Equal(t, "30", err.Headers().Get("Retry-After"))
	assert.Equal(t, "http error 799", NewHTTPError(799, "").Error())
	assert.Equal(t, "slow down", NewHTTPError(http.StatusTooManyRequests, "slow down").Error())
}
