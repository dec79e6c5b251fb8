// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and are mapped to HTTP responses by the
// apierror package.
package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input failed field-level validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated indicates the caller presented no valid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller is authenticated but lacks permission.
	ErrForbidden = errors.New("forbidden")
)

// NotFoundError reports that a lookup by identifier failed.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// EntityName returns the unqualified entity type name, e.g. "Order" for
// "sales.Order" or "*app.Order".
func (e *NotFoundError) EntityName() string {
	name := strings.TrimLeft(e.Entity, "*")
	if i := strings.LastIndexAny(name, "./\\"); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError carries field-level validation failures.
// Fields maps a field name to its ordered list of messages. Messages is the
// flat, ordered list of every message across all fields.
type ValidationError struct {
	Fields   map[string][]string
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}

	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a message for field, keeping Messages in insertion order.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}

	e.Fields[field] = append(e.Fields[field], message)
	e.Messages = append(e.Messages, message)
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Messages) > 0
}

// FieldErrors returns a deep copy of the field map.
func (e *ValidationError) FieldErrors() map[string][]string {
	if e.Fields == nil {
		return nil
	}

	out := make(map[string][]string, len(e.Fields))
	for k, v := range e.Fields {
		out[k] = slices.Clone(v)
	}

	return out
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)

	return v
}

// NewValidationErrors creates a validation error from a field map.
// Flat messages are ordered by field name for determinism.
func NewValidationErrors(fields map[string][]string) *ValidationError {
	v := &ValidationError{}
	for _, field := range slices.Sorted(maps.Keys(fields)) {
		for _, msg := range fields[field] {
			v.Add(field, msg)
		}
	}

	return v
}

// AuthenticationError reports missing or invalid credentials.
type AuthenticationError struct {
	Reason string
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Reason != "" {
		return "unauthenticated: " + e.Reason
	}

	return "unauthenticated"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *AuthenticationError) Unwrap() error {
	return ErrUnauthenticated
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(reason string) error {
	return &AuthenticationError{Reason: reason}
}

// AuthorizationError reports that an authenticated caller may not perform
// an operation.
type AuthorizationError struct {
	Operation string
	Reason    string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("operation %q forbidden: %s", e.Operation, e.Reason)
	}

	return fmt.Sprintf("operation %q forbidden", e.Operation)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *AuthorizationError) Unwrap() error {
	return ErrForbidden
}

// NewAuthorizationError creates an authorization error with context.
func NewAuthorizationError(operation, reason string) error {
	return &AuthorizationError{Operation: operation, Reason: reason}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnauthenticated checks if an error is an authentication error.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsForbidden checks if an error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
