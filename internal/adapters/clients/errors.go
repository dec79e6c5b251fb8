// Package clients provides HTTP client adapters for downstream services.
package clients

import (
	"errors"
	"fmt"
	"time"
)

// Client errors describe infrastructure failures. Adapters translate them
// into errors the API layer understands.
var (
	// ErrCircuitOpen is matched by every *CircuitOpenError.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last transport error once all attempts
	// have failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// CircuitOpenError is returned while the circuit breaker blocks requests.
type CircuitOpenError struct {
	// RetryAfter is how long until the breaker lets a probe through.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrCircuitOpen, e.RetryAfter.Round(time.Second))
}

// Unwrap returns ErrCircuitOpen.
func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }
