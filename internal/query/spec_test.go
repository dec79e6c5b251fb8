package query

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderSpec() *Spec {
	return NewSpec("orders").
		AllowedFilters("status", "customer").
		AllowedFilterValues("status", "pending", "paid", "shipped", "cancelled").
		AllowedFields("id", "status", "total", "items.sku", "items.quantity").
		AllowedIncludes("items").
		AllowedSorts("created_at", "total").
		AllowedAppends("total_formatted")
}

func TestSpec_Parse_Valid(t *testing.T) {
	values := url.Values{
		"filter[status]":   {"pending,paid"},
		"filter[customer]": {"acme"},
		"include":          {"items"},
		"sort":             {"-created_at,total:asc"},
		"fields[orders]":   {"id,total"},
		"fields[items]":    {"sku"},
		"append":           {"total_formatted"},
		"page":             {"2"},
	}

	q, err := orderSpec().Parse(values)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"status":   {"pending", "paid"},
		"customer": {"acme"},
	}, q.Filters)
	assert.Equal(t, []string{"items"}, q.Includes)
	assert.Equal(t, []Sort{
		{Field: "created_at", Descending: true},
		{Field: "total"},
	}, q.Sorts)
	assert.Equal(t, map[string][]string{
		"orders": {"id", "total"},
		"items":  {"sku"},
	}, q.Fields)
	assert.Equal(t, []string{"total_formatted"}, q.Appends)
}

func TestSpec_Parse_Empty(t *testing.T) {
	q, err := orderSpec().Parse(url.Values{})
	require.NoError(t, err)

	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Includes)
	assert.Empty(t, q.Sorts)
	assert.Empty(t, q.Appends)
}

func TestSpec_Parse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		spec        *Spec
		values      url.Values
		kind        ErrorKind
		unknown     []string
		msgContains string
	}{
		{
			name:        "unknown filter",
			spec:        orderSpec(),
			values:      url.Values{"filter[colour]": {"red"}},
			kind:        InvalidFilterQuery,
			unknown:     []string{"colour"},
			msgContains: "Requested filter(s) `colour` are not allowed",
		},
		{
			name:        "invalid filter value",
			spec:        orderSpec(),
			values:      url.Values{"filter[status]": {"pending,lost"}},
			kind:        InvalidFilterValue,
			unknown:     []string{"lost"},
			msgContains: "Filter value `lost` is not valid",
		},
		{
			name:        "unknown include",
			spec:        orderSpec(),
			values:      url.Values{"include": {"items,customer"}},
			kind:        InvalidIncludeQuery,
			unknown:     []string{"customer"},
			msgContains: "Allowed include(s) are `items`",
		},
		{
			name:    "unknown sort",
			spec:    orderSpec(),
			values:  url.Values{"sort": {"-weight"}},
			kind:    InvalidSortQuery,
			unknown: []string{"weight"},
		},
		{
			name:        "invalid sort direction",
			spec:        orderSpec(),
			values:      url.Values{"sort": {"total:sideways"}},
			kind:        InvalidSortDirection,
			unknown:     []string{"sideways"},
			msgContains: "`sideways` given",
		},
		{
			name:        "unknown field",
			spec:        orderSpec(),
			values:      url.Values{"fields[orders]": {"id,secret"}},
			kind:        InvalidFieldQuery,
			unknown:     []string{"secret"},
			msgContains: "Requested field(s) `secret` are not allowed",
		},
		{
			name:    "unknown relation field is qualified",
			spec:    orderSpec(),
			values:  url.Values{"include": {"items"}, "fields[items]": {"cost"}},
			kind:    InvalidFieldQuery,
			unknown: []string{"items.cost"},
		},
		{
			name:    "fields for relation that is not included",
			spec:    orderSpec(),
			values:  url.Values{"fields[items]": {"sku"}},
			kind:    UnknownIncludedFields,
			unknown: []string{"items"},
		},
		{
			name:    "unknown append",
			spec:    orderSpec(),
			values:  url.Values{"append": {"margin"}},
			kind:    InvalidAppendQuery,
			unknown: []string{"margin"},
		},
		{
			name: "fields declared after includes",
			spec: NewSpec("orders").
				AllowedIncludes("items").
				AllowedFields("id"),
			values:      url.Values{},
			kind:        FieldsAfterIncludes,
			msgContains: "before the allowed includes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.spec.Parse(tt.values)
			require.Error(t, err)
			assert.Nil(t, q)

			var qErr *Error
			require.ErrorAs(t, err, &qErr)
			assert.Equal(t, tt.kind, qErr.Kind)
			assert.Equal(t, tt.unknown, qErr.Unknown)
			assert.True(t, IsMalformed(err))

			if tt.msgContains != "" {
				assert.Contains(t, err.Error(), tt.msgContains)
			}
		})
	}
}

func TestErrorKind_Names(t *testing.T) {
	seen := make(map[string]bool)

	for _, kind := range ErrorKinds() {
		name := kind.String()
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true

		parsed, ok := ParseErrorKind(name)
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	assert.Len(t, seen, 9)
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())

	_, ok := ParseErrorKind("nope")
	assert.False(t, ok)
}

func TestIsMalformed_Wrapped(t *testing.T) {
	_, err := orderSpec().Parse(url.Values{"sort": {"nope"}})
	wrapped := fmt.Errorf("listing orders: %w", err)

	assert.True(t, IsMalformed(wrapped))
	assert.False(t, IsMalformed(fmt.Errorf("other")))
}
