package ports

import (
	"context"
	"log/slog"
)

// Envelope is the standard JSON body for API responses.
//
// Message is a string, or a []string when several validation messages are
// reported. Errors is only populated for validation failures.
type Envelope struct {
	Success bool                `json:"success"`
	Message any                 `json:"message"`
	Data    any                 `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// Translator resolves a message key into a localized string.
//
// An empty locale selects the translator's fallback locale. Placeholders are
// substituted by name (":model" in the catalog text is replaced by
// placeholders["model"]). When the key cannot be resolved the key itself is
// returned.
type Translator interface {
	Translate(locale, key string, placeholders map[string]string) string
}

// ResponseBuilder builds response envelopes.
type ResponseBuilder interface {
	// OK builds a success envelope.
	OK(message string, data any) *Envelope

	// Error builds a failure envelope with a single message.
	// The status is advisory; callers own the final status code.
	Error(message string, status int) *Envelope

	// WithErrors builds a failure envelope carrying validation messages and
	// the field → messages map.
	WithErrors(messages []string, fieldErrors map[string][]string) *Envelope
}

// ErrorLogger records structured diagnostic events. Implementations must be
// fire-and-forget; callers do not wait on delivery and ignore failures.
type ErrorLogger interface {
	Record(ctx context.Context, level slog.Level, message string, err error)
}
