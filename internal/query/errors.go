package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is the sentinel every *Error unwraps to.
var ErrMalformed = errors.New("malformed query")

// ErrorKind identifies which part of a query specification was rejected.
type ErrorKind int

// Query error kinds.
const (
	InvalidFilterQuery ErrorKind = iota + 1
	InvalidIncludeQuery
	InvalidSortQuery
	InvalidFieldQuery
	InvalidAppendQuery
	UnknownIncludedFields
	InvalidFilterValue
	InvalidSortDirection
	FieldsAfterIncludes
)

var errorKindNames = map[ErrorKind]string{
	InvalidFilterQuery:    "invalid_filter_query",
	InvalidIncludeQuery:   "invalid_include_query",
	InvalidSortQuery:      "invalid_sort_query",
	InvalidFieldQuery:     "invalid_field_query",
	InvalidAppendQuery:    "invalid_append_query",
	UnknownIncludedFields: "unknown_included_fields_query",
	InvalidFilterValue:    "invalid_filter_value",
	InvalidSortDirection:  "invalid_direction",
	FieldsAfterIncludes:   "allowed_fields_must_be_called_before_allowed_includes",
}

// String returns the configuration name of the kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErrorKinds returns every kind in declaration order.
func ErrorKinds() []ErrorKind {
	return []ErrorKind{
		InvalidFilterQuery,
		InvalidIncludeQuery,
		InvalidSortQuery,
		InvalidFieldQuery,
		InvalidAppendQuery,
		UnknownIncludedFields,
		InvalidFilterValue,
		InvalidSortDirection,
		FieldsAfterIncludes,
	}
}

// ParseErrorKind resolves a configuration name back to its kind.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for k, n := range errorKindNames {
		if n == name {
			return k, true
		}
	}

	return 0, false
}

// Error reports a rejected query parameter.
type Error struct {
	Kind ErrorKind

	// Unknown lists the offending names or values.
	Unknown []string

	// Allowed lists what would have been accepted, when meaningful.
	Allowed []string

	msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns ErrMalformed for errors.Is() support.
func (e *Error) Unwrap() error {
	return ErrMalformed
}

func newError(kind ErrorKind, unknown, allowed []string) *Error {
	e := &Error{Kind: kind, Unknown: unknown, Allowed: allowed}
	e.msg = e.describe()

	return e
}

func (e *Error) describe() string {
	unknown := strings.Join(e.Unknown, ", ")
	allowed := strings.Join(e.Allowed, ", ")

	switch e.Kind {
	case InvalidFilterQuery:
		return fmt.Sprintf("Requested filter(s) `%s` are not allowed. Allowed filter(s) are `%s`.", unknown, allowed)
	case InvalidIncludeQuery:
		return fmt.Sprintf("Requested include(s) `%s` are not allowed. Allowed include(s) are `%s`.", unknown, allowed)
	case InvalidSortQuery:
		return fmt.Sprintf("Requested sort(s) `%s` are not allowed. Allowed sort(s) are `%s`.", unknown, allowed)
	case InvalidFieldQuery:
		return fmt.Sprintf("Requested field(s) `%s` are not allowed. Allowed field(s) are `%s`.", unknown, allowed)
	case InvalidAppendQuery:
		return fmt.Sprintf("Requested append(s) `%s` are not allowed. Allowed append(s) are `%s`.", unknown, allowed)
	case UnknownIncludedFields:
		return fmt.Sprintf("Requested field(s) for `%s` belong to relations that are not included.", unknown)
	case InvalidFilterValue:
		return fmt.Sprintf("Filter value `%s` is not valid. Allowed value(s) are `%s`.", unknown, allowed)
	case InvalidSortDirection:
		return fmt.Sprintf("The sort direction should be either `asc` or `desc`. `%s` given.", unknown)
	case FieldsAfterIncludes:
		return "The allowed fields must be declared before the allowed includes."
	default:
		return ErrMalformed.Error()
	}
}

// IsMalformed reports whether err is a query error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
