// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"github.com/jsamuelsen/go-api-errors/internal/ports"
)

// Responder builds the standard response envelope.
// It implements ports.ResponseBuilder.
type Responder struct{}

var _ ports.ResponseBuilder = Responder{}

// NewResponder creates a Responder.
func NewResponder() Responder {
	return Responder{}
}

// OK builds a success envelope.
func (Responder) OK(message string, data any) *ports.Envelope {
	return &ports.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Error builds a failure envelope. The status is the caller's concern.
func (Responder) Error(message string, _ int) *ports.Envelope {
	return &ports.Envelope{
		Success: false,
		Message: message,
	}
}

// WithErrors builds a validation failure envelope. Message is a string for a
// single message and an array when there are several.
func (Responder) WithErrors(messages []string, fieldErrors map[string][]string) *ports.Envelope {
	var message any

	switch len(messages) {
	case 0:
		message = ""
	case 1:
		message = messages[0]
	default:
		message = append([]string(nil), messages...)
	}

	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}

	return &ports.Envelope{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	}
}
