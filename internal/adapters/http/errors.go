package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/glob"

	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
	"github.com/jsamuelsen/go-api-errors/internal/platform/telemetry"
)

const (
	jsonContentType = "application/json; charset=utf-8"
	textContentType = "text/plain; charset=utf-8"
)

// PathMatcher decides which requests receive API error envelopes.
type PathMatcher struct {
	pattern glob.Glob
}

// NewPathMatcher compiles pattern. The leading slash is optional and "*"
// matches across path segments, so "api/*" covers "/api/v1/orders".
func NewPathMatcher(pattern string) (*PathMatcher, error) {
	g, err := glob.Compile(strings.TrimPrefix(pattern, "/"))
	if err != nil {
		return nil, fmt.Errorf("compiling api pattern %q: %w", pattern, err)
	}

	return &PathMatcher{pattern: g}, nil
}

// Match reports whether path belongs to the API.
func (m *PathMatcher) Match(path string) bool {
	if m == nil {
		return true
	}

	return m.pattern.Match(strings.TrimPrefix(path, "/"))
}

// ErrorResponder writes error responses for the gin host.
//
// API requests are rendered through the classify and assemble pipeline.
// Other requests get the status reason phrase as plain text, except for
// prepared responses which are always sent unchanged.
type ErrorResponder struct {
	renderer *apierror.Renderer
	matcher  *PathMatcher
	metrics  *telemetry.ErrorMetrics
}

// NewErrorResponder creates an ErrorResponder. A nil matcher treats every
// path as an API path; nil metrics are not recorded.
func NewErrorResponder(
	renderer *apierror.Renderer,
	matcher *PathMatcher,
	metrics *telemetry.ErrorMetrics,
) *ErrorResponder {
	return &ErrorResponder{
		renderer: renderer,
		matcher:  matcher,
		metrics:  metrics,
	}
}

// RespondWithError renders err and writes it to c. Nothing is written when
// the response has already started.
func (r *ErrorResponder) RespondWithError(c *gin.Context, err error) {
	if c.Writer.Written() {
		logging.FromContext(c.Request.Context()).Warn("error after response was written",
			slog.String("error", errorString(err)),
		)

		return
	}

	if !r.matcher.Match(c.Request.URL.Path) {
		r.respondPlain(c, err)
		return
	}

	resp := r.renderer.Render(c.Request.Context(), err)
	r.record(c, resp.Kind.String(), resp.Status)

	for name, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}

	body, encErr := resp.JSON()
	if encErr != nil {
		body, _ = json.Marshal(gin.H{"success": false, "message": http.StatusText(resp.Status)})
	}

	contentType := c.Writer.Header().Get("Content-Type")
	if _, raw := resp.Body.(json.RawMessage); !raw || contentType == "" {
		contentType = jsonContentType
	}

	c.Writer.Header().Set("Content-Type", contentType)
	c.Data(resp.Status, contentType, body)
}

// respondPlain answers requests outside the API pattern.
func (r *ErrorResponder) respondPlain(c *gin.Context, err error) {
	var re *apierror.ResponseError
	if errors.As(err, &re) {
		status := re.StatusCode()
		if !validStatus(status) {
			status = http.StatusInternalServerError
		}

		r.record(c, apierror.KindWrappedResponse.String(), status)

		for name, values := range re.Response.Header {
			for _, v := range values {
				c.Writer.Header().Add(name, v)
			}
		}

		c.Data(status, re.Response.Header.Get("Content-Type"), re.Response.Body)

		return
	}

	status := http.StatusInternalServerError

	var sc apierror.StatusCoder
	if errors.As(err, &sc) && validStatus(sc.StatusCode()) {
		status = sc.StatusCode()
	}

	r.record(c, "plain", status)
	c.Data(status, textContentType, []byte(http.StatusText(status)))
}

func (r *ErrorResponder) record(c *gin.Context, kind string, status int) {
	c.Set(telemetry.ErrorKindKey, kind)
	r.metrics.Observe(kind, status)
}

// ErrorHandler renders the last error recorded on the context once the rest
// of the chain has run.
func (r *ErrorResponder) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		r.RespondWithError(c, last.Err)
	}
}

// NoRoute handles requests that match no route.
func (r *ErrorResponder) NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(&apierror.RouteNotFoundError{Method: c.Request.Method, Path: c.Request.URL.Path})
		c.Abort()
	}
}

// NoMethod handles requests whose path matches a route but not its method.
func (r *ErrorResponder) NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(&apierror.MethodNotAllowedError{Method: c.Request.Method, Path: c.Request.URL.Path})
		c.Abort()
	}
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
