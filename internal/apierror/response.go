package apierror

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jsamuelsen/go-api-errors/internal/ports"
)

// Response is a rendered error: the final status, extra headers and the body.
//
// Body is a *ports.Envelope, or a json.RawMessage when a JSON wrapped
// response is passed through.
type Response struct {
	Kind   Kind
	Status int
	Header http.Header
	Body   any
}

// JSON encodes the body. A passed-through JSON body is returned unchanged.
func (r Response) JSON() ([]byte, error) {
	if raw, ok := r.Body.(json.RawMessage); ok {
		return bytes.Clone(raw), nil
	}

	return json.Marshal(r.Body)
}

// Envelope returns the body as an envelope, or nil for passthrough bodies.
func (r Response) Envelope() *ports.Envelope {
	env, _ := r.Body.(*ports.Envelope)
	return env
}

// minimalResponse is used when assembling itself fails.
func minimalResponse(status int) Response {
	return Response{
		Kind:   KindUnclassified,
		Status: status,
		Body: &ports.Envelope{
			Success: false,
			Message: http.StatusText(status),
		},
	}
}
