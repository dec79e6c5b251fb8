package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/jsamuelsen/go-api-errors/internal/adapters/clients"
	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/domain"
)

// maxErrorBody bounds how much of an upstream error body is kept.
const maxErrorBody = 64 << 10

// ErrorResponse is the error body downstream services send. It accepts both
// the nested form (error.code/message) and the flat form (code/message).
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail contains error information from downstream services.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetCode returns the error code from either format.
func (e *ErrorResponse) GetCode() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

// GetMessage returns the error message from either format.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse parses an error body. It returns nil when the body is
// empty, not JSON, or carries neither a code nor a message.
func ParseErrorResponse(body []byte) *ErrorResponse {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return nil
	}

	if errResp.GetCode() == "" && errResp.GetMessage() == "" && len(errResp.Error.Details) == 0 {
		return nil
	}

	return &errResp
}

// Target names what a request was looking up, for not-found errors.
type Target struct {
	Service string
	Entity  string
	ID      string
}

// MapHTTPError turns a failed downstream call into an error for the API
// layer. resp is ignored when clientErr is set. A 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, target Target) error {
	if clientErr != nil {
		return mapClientError(clientErr, target.Service)
	}

	if resp == nil {
		return pkgerrors.Errorf("%s: no response received", target.Service)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}

	return mapStatusCode(resp, body, target)
}

func mapClientError(err error, service string) error {
	var open *clients.CircuitOpenError
	if errors.As(err, &open) {
		return apierror.NewHTTPError(http.StatusServiceUnavailable, "").
			WithHeader("Retry-After", retryAfterSeconds(open)).
			Wrap(fmt.Errorf("%s: %w", service, err))
	}

	return pkgerrors.Wrapf(err, "calling %s", service)
}

func mapStatusCode(resp *http.Response, body []byte, target Target) error {
	status := resp.StatusCode
	errResp := ParseErrorResponse(body)

	switch status {
	case http.StatusNotFound:
		return domain.NewNotFoundError(target.Entity, target.ID)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if errResp != nil && len(errResp.Error.Details) > 0 {
			fields := make(map[string][]string, len(errResp.Error.Details))
			for field, msg := range errResp.Error.Details {
				fields[field] = []string{msg}
			}

			return domain.NewValidationErrors(fields)
		}

	case http.StatusUnauthorized, http.StatusForbidden:
		return apierror.NewHTTPError(http.StatusBadGateway, "").
			Wrap(fmt.Errorf("%s rejected our credentials with status %d", target.Service, status))

	case http.StatusTooManyRequests:
		e := apierror.NewHTTPError(http.StatusTooManyRequests, "")
		if after := resp.Header.Get("Retry-After"); after != "" {
			e.WithHeader("Retry-After", after)
		}

		return e.Wrap(fmt.Errorf("%s rate limited the request", target.Service))
	}

	return apierror.NewResponseError(status, resp.Header.Get("Content-Type"), body)
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(open *clients.CircuitOpenError) string {
	secs := int(math.Ceil(open.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}

	return strconv.Itoa(secs)
}
