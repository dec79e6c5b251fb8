package apierror

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// StatusCoder is implemented by errors that declare their own HTTP status.
type StatusCoder interface {
	error
	StatusCode() int
}

// HeaderCarrier is implemented by errors that carry response headers.
type HeaderCarrier interface {
	error
	Headers() http.Header
}

// HTTPError is a generic error with an explicit status and optional headers.
type HTTPError struct {
	Status  int
	Message string
	Header  http.Header
	Err     error
}

// NewHTTPError creates an HTTPError. An empty message renders as the
// status reason phrase.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// WithHeader adds a response header and returns e.
func (e *HTTPError) WithHeader(key, value string) *HTTPError {
	if e.Header == nil {
		e.Header = make(http.Header)
	}

	e.Header.Add(key, value)

	return e
}

// Wrap records the underlying cause and returns e.
func (e *HTTPError) Wrap(err error) *HTTPError {
	e.Err = err
	return e
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if text := http.StatusText(e.Status); text != "" {
		return text
	}

	return fmt.Sprintf("http error %d", e.Status)
}

// Unwrap returns the underlying cause.
func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode implements StatusCoder.
func (e *HTTPError) StatusCode() int { return e.Status }

// Headers implements HeaderCarrier.
func (e *HTTPError) Headers() http.Header { return e.Header }

// RouteNotFoundError reports that no route matched the request path.
type RouteNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route matches %s %s", e.Method, e.Path)
}

// StatusCode implements StatusCoder.
func (e *RouteNotFoundError) StatusCode() int { return http.StatusNotFound }

// MethodNotAllowedError reports that a route matched but not its method.
type MethodNotAllowedError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s", e.Method, e.Path)
}

// StatusCode implements StatusCoder.
func (e *MethodNotAllowedError) StatusCode() int { return http.StatusMethodNotAllowed }

// WrappedResponse is a fully formed response carried by a ResponseError.
type WrappedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the response declares a JSON media type and its
// body is valid JSON.
func (r *WrappedResponse) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
		return false
	}

	return json.Valid(r.Body)
}

// ResponseError carries a response that must be sent as-is. Status is the
// authoritative status; when zero the wrapped response's own status is used.
type ResponseError struct {
	Status   int
	Response WrappedResponse
}

// NewResponseError creates a ResponseError whose response has the given
// status, content type and body.
func NewResponseError(status int, contentType string, body []byte) *ResponseError {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	return &ResponseError{
		Status: status,
		Response: WrappedResponse{
			StatusCode: status,
			Header:     header,
			Body:       body,
		},
	}
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("http response error (status %d)", e.StatusCode())
}

// StatusCode implements StatusCoder.
func (e *ResponseError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}

	return e.Response.StatusCode
}
