package logging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
)

// ContextFields selects the attributes attached to recorded errors.
type ContextFields struct {
	ErrorType      bool
	ErrorMessage   bool
	Stack          bool
	RequestURL     bool
	RequestMethod  bool
	RequestHeaders bool
	UserID         bool
}

// DefaultContextFields records everything except the stack and headers.
func DefaultContextFields() ContextFields {
	return ContextFields{
		ErrorType:     true,
		ErrorMessage:  true,
		RequestURL:    true,
		RequestMethod: true,
		UserID:        true,
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorLogger writes unhandled errors to slog.
//
// The logger is taken from the context when one is present, so request and
// trace IDs added by middleware are kept. Headers pass through the same masq
// redaction as every other attribute.
type ErrorLogger struct {
	fallback *slog.Logger
	fields   ContextFields
}

// NewErrorLogger creates an ErrorLogger. A nil fallback uses the default
// logger.
func NewErrorLogger(fallback *slog.Logger, fields ContextFields) *ErrorLogger {
	return &ErrorLogger{fallback: fallback, fields: fields}
}

// Record logs err at level. It never returns an error.
func (l *ErrorLogger) Record(ctx context.Context, level slog.Level, message string, err error) {
	logger := FromContextOr(ctx, l.fallback)
	if !logger.Enabled(ctx, level) {
		return
	}

	logger.LogAttrs(ctx, level, message, l.attrs(ctx, err)...)
}

func (l *ErrorLogger) attrs(ctx context.Context, err error) []slog.Attr {
	attrs := make([]slog.Attr, 0, 7)

	if err != nil {
		if l.fields.ErrorType {
			attrs = append(attrs, slog.String("error_type", fmt.Sprintf("%T", err)))
		}

		if l.fields.ErrorMessage {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
	}

	if l.fields.Stack {
		attrs = append(attrs, slog.String("stack", stackOf(err)))
	}

	info, ok := RequestInfoFromContext(ctx)
	if !ok {
		return attrs
	}

	if l.fields.RequestURL && info.URL != "" {
		attrs = append(attrs, slog.String("request_url", info.URL))
	}

	if l.fields.RequestMethod && info.Method != "" {
		attrs = append(attrs, slog.String("request_method", info.Method))
	}

	if l.fields.RequestHeaders && len(info.Header) > 0 {
		headers := make([]any, 0, len(info.Header))
		for name, values := range info.Header {
			headers = append(headers, slog.Any(strings.ToLower(name), values))
		}

		attrs = append(attrs, slog.Group("request_headers", headers...))
	}

	if l.fields.UserID && info.UserID != "" {
		attrs = append(attrs, slog.String("user_id", info.UserID))
	}

	return attrs
}

// stackOf prefers the stack captured when err was created.
func stackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}

	return string(debug.Stack())
}
