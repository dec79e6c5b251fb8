package apierror

import (
	"fmt"
	"net/http"
)

// Kind is the classification outcome for an error. Kinds are declared in
// precedence order: when an error matches several, the lowest wins.
type Kind int

// Error kinds, in precedence order.
const (
	KindWrappedResponse Kind = iota + 1
	KindEntityNotFound
	KindRouteNotFound
	KindMethodNotAllowed
	KindValidationFailed
	KindUnauthenticated
	KindUnauthorized
	KindMalformedQuery
	KindGenericHTTP
	KindUnclassified
)

type kindInfo struct {
	name       string
	configName string
	status     int
}

// kindTable holds the fixed status per kind. Zero means the status is
// carried by the error itself.
var kindTable = map[Kind]kindInfo{
	KindWrappedResponse:  {name: "wrapped_response", configName: "http_response"},
	KindEntityNotFound:   {name: "entity_not_found", configName: "model_not_found", status: http.StatusNotFound},
	KindRouteNotFound:    {name: "route_not_found", configName: "not_found_http", status: http.StatusNotFound},
	KindMethodNotAllowed: {name: "method_not_allowed", configName: "method_not_allowed", status: http.StatusMethodNotAllowed},
	KindValidationFailed: {name: "validation_failed", configName: "validation", status: http.StatusUnprocessableEntity},
	KindUnauthenticated:  {name: "unauthenticated", configName: "authentication", status: http.StatusUnauthorized},
	KindUnauthorized:     {name: "unauthorized", configName: "authorization", status: http.StatusForbidden},
	KindMalformedQuery:   {name: "malformed_query", configName: "query_builder", status: http.StatusBadRequest},
	KindGenericHTTP:      {name: "generic_http_error", configName: "http_interface"},
	KindUnclassified:     {name: "unclassified", configName: "generic", status: http.StatusInternalServerError},
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ConfigName returns the key used for the kind in configuration toggles.
func (k Kind) ConfigName() string {
	return kindTable[k].configName
}

// DefaultStatus returns the fixed status for the kind, or 0 when the status
// is carried by the error.
func (k Kind) DefaultStatus() int {
	return kindTable[k].status
}

// CarriesStatus reports whether the status comes from the error itself.
func (k Kind) CarriesStatus() bool {
	return k.DefaultStatus() == 0 && k.Valid()
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Kinds returns every kind in precedence order.
func Kinds() []Kind {
	return []Kind{
		KindWrappedResponse,
		KindEntityNotFound,
		KindRouteNotFound,
		KindMethodNotAllowed,
		KindValidationFailed,
		KindUnauthenticated,
		KindUnauthorized,
		KindMalformedQuery,
		KindGenericHTTP,
		KindUnclassified,
	}
}

// ParseKind resolves a configuration toggle name to its kind.
func ParseKind(configName string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.ConfigName() == configName {
			return k, true
		}
	}

	return 0, false
}

// statusKeys maps status-override keys to kinds. Only fixed-status kinds are
// overridable.
var statusKeys = map[string]Kind{
	"model_not_found":    KindEntityNotFound,
	"resource_not_found": KindRouteNotFound,
	"method_not_allowed": KindMethodNotAllowed,
	"validation":         KindValidationFailed,
	"authentication":     KindUnauthenticated,
	"authorization":      KindUnauthorized,
	"bad_request":        KindMalformedQuery,
	"server_error":       KindUnclassified,
}

// ParseStatusKey resolves a status-override key to its kind.
func ParseStatusKey(key string) (Kind, bool) {
	k, ok := statusKeys[key]
	return k, ok
}

// validStatus reports whether code is a usable HTTP status.
func validStatus(code int) bool {
	return code >= 100 && code <= 599
}
