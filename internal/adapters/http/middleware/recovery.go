package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
)

// PanicError wraps a value recovered from a panicking handler. It matches
// no classification rule and therefore renders as a 500.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the panic with its stack trace at ERROR level
//   - Records a *PanicError on the context and aborts
//
// The error handler must run before this middleware so the recorded error
// is rendered.
func Recovery() gin.HandlerFunc {
	return RecoveryWithWriter(nil)
}

// RecoveryWithWriter is Recovery with a hook that receives every recovered
// value and its stack.
func RecoveryWithWriter(stackHandler func(err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()

			if stackHandler != nil {
				stackHandler(r, stack)
			}

			logging.FromContext(c.Request.Context()).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)

			_ = c.Error(&PanicError{Value: r, Stack: stack})
			c.Abort()
		}()

		c.Next()
	}
}
