package apierror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/go-api-errors/internal/domain"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
	"github.com/jsamuelsen/go-api-errors/internal/query"
	"github.com/jsamuelsen/go-api-errors/internal/validation"
)

// Message keys resolved through the Translator.
const (
	KeyModelNotFound    = "model_not_found"
	KeyResourceNotFound = "resource_not_found"
	KeyMethodNotAllowed = "method_not_allowed"
	KeyValidationFailed = "validation_failed"
	KeyUnauthenticated  = "unauthenticated"
	KeyUnauthorized     = "unauthorized"
	KeyBadRequest       = "bad_request"
	KeyHTTPException    = "http_exception"
	KeyServerError      = "server_error"
)

// UnhandledMessage is the log message for unclassified errors.
const UnhandledMessage = "unhandled API error"

const defaultEntityName = "Resource"

// Options controls assembly. The zero value hides error details and does
// not log.
type Options struct {
	// Debug exposes raw messages of unclassified errors.
	Debug bool

	// LogErrors enables the log event on the unclassified path.
	LogErrors bool

	// LogLevel is the level of that event.
	LogLevel slog.Level

	// StatusOverrides replaces the fixed status of a kind. Kinds that carry
	// their own status ignore overrides.
	StatusOverrides map[Kind]int

	// TranslationKeys maps a message key to the catalog key used instead.
	TranslationKeys map[string]string
}

// DefaultOptions hides details and logs unclassified errors at error level.
func DefaultOptions() Options {
	return Options{
		LogErrors: true,
		LogLevel:  slog.LevelError,
	}
}

// Assembler builds responses for classified errors.
type Assembler struct {
	translator ports.Translator
	builder    ports.ResponseBuilder
	logger     ports.ErrorLogger
	opts       Options
}

// NewAssembler creates an Assembler. logger may be nil.
func NewAssembler(
	translator ports.Translator,
	builder ports.ResponseBuilder,
	logger ports.ErrorLogger,
	opts Options,
) *Assembler {
	return &Assembler{
		translator: translator,
		builder:    builder,
		logger:     logger,
		opts:       opts,
	}
}

// Assemble builds the response for err classified as kind. The returned
// status is always the authoritative status for the kind. Assemble never
// panics; a failing collaborator yields a minimal 500 envelope.
func (a *Assembler) Assemble(ctx context.Context, kind Kind, err error) (resp Response) {
	defer func() {
		if recover() != nil {
			resp = minimalResponse(a.status(KindUnclassified, nil))
		}
	}()

	resp = a.build(ctx, kind, err)
	resp.Status = a.status(resp.Kind, err)

	return resp
}

func (a *Assembler) build(ctx context.Context, kind Kind, err error) Response {
	switch kind {
	case KindWrappedResponse:
		var re *ResponseError
		if errors.As(err, &re) {
			return a.wrapped(kind, err, re)
		}
	case KindEntityNotFound:
		return a.message(kind, err, a.translate(ctx, KeyModelNotFound, map[string]string{
			"model": entityName(err),
		}))
	case KindRouteNotFound:
		return a.message(kind, err, a.translate(ctx, KeyResourceNotFound, nil))
	case KindMethodNotAllowed:
		return a.message(kind, err, a.translate(ctx, KeyMethodNotAllowed, nil))
	case KindValidationFailed:
		return a.validation(ctx, kind, err)
	case KindUnauthenticated:
		return a.message(kind, err, a.translate(ctx, KeyUnauthenticated, nil))
	case KindUnauthorized:
		return a.message(kind, err, a.translate(ctx, KeyUnauthorized, nil))
	case KindMalformedQuery:
		var qe *query.Error
		if errors.As(err, &qe) && qe.Error() != "" {
			return a.message(kind, err, qe.Error())
		}

		return a.message(kind, err, a.translate(ctx, KeyBadRequest, nil))
	case KindGenericHTTP:
		return a.generic(ctx, kind, err)
	case KindUnclassified:
	}

	return a.unclassified(ctx, err)
}

func (a *Assembler) message(kind Kind, err error, msg string) Response {
	return Response{
		Kind: kind,
		Body: a.builder.Error(msg, a.status(kind, err)),
	}
}

func (a *Assembler) wrapped(kind Kind, err error, re *ResponseError) Response {
	if !re.Response.IsJSON() {
		return a.message(kind, err, string(re.Response.Body))
	}

	header := re.Response.Header.Clone()
	header.Del("Content-Length")

	return Response{
		Kind:   kind,
		Header: header,
		Body:   json.RawMessage(bytes.Clone(re.Response.Body)),
	}
}

func (a *Assembler) validation(ctx context.Context, kind Kind, err error) Response {
	detail, ok := validation.Extract(err)
	if !ok {
		detail = &domain.ValidationError{}
	}

	messages := append([]string(nil), detail.Messages...)
	if len(messages) == 0 {
		messages = []string{a.translate(ctx, KeyValidationFailed, nil)}
	}

	fields := detail.FieldErrors()
	if fields == nil {
		fields = map[string][]string{}
	}

	return Response{
		Kind: kind,
		Body: a.builder.WithErrors(messages, fields),
	}
}

func (a *Assembler) generic(ctx context.Context, kind Kind, err error) Response {
	status := a.status(kind, err)

	var msg string

	var he *HTTPError
	if errors.As(err, &he) {
		msg = he.Message
	} else if err != nil {
		msg = err.Error()
	}

	if msg == "" {
		msg = http.StatusText(status)
	}

	if msg == "" {
		msg = a.translate(ctx, KeyHTTPException, nil)
	}

	var header http.Header

	var hc HeaderCarrier
	if errors.As(err, &hc) {
		header = hc.Headers().Clone()
	}

	return Response{
		Kind:   kind,
		Header: header,
		Body:   a.builder.Error(msg, status),
	}
}

func (a *Assembler) unclassified(ctx context.Context, err error) Response {
	a.record(ctx, err)

	msg := ""
	if a.opts.Debug && err != nil {
		msg = err.Error()
	}

	if msg == "" {
		msg = a.translate(ctx, KeyServerError, nil)
	}

	return a.message(KindUnclassified, err, msg)
}

// record emits the unhandled-error event. Logger failures are dropped.
func (a *Assembler) record(ctx context.Context, err error) {
	if !a.opts.LogErrors || a.logger == nil {
		return
	}

	defer func() { _ = recover() }()

	a.logger.Record(ctx, a.opts.LogLevel, UnhandledMessage, err)
}

func (a *Assembler) translate(ctx context.Context, key string, placeholders map[string]string) string {
	if override, ok := a.opts.TranslationKeys[key]; ok && override != "" {
		key = override
	}

	if a.translator == nil {
		return key
	}

	return a.translator.Translate(LocaleFromContext(ctx), key, placeholders)
}

// status returns the authoritative status for kind.
func (a *Assembler) status(kind Kind, err error) int {
	switch kind {
	case KindWrappedResponse:
		var re *ResponseError
		if errors.As(err, &re) && validStatus(re.StatusCode()) {
			return re.StatusCode()
		}

		return http.StatusInternalServerError
	case KindGenericHTTP:
		var sc StatusCoder
		if errors.As(err, &sc) && validStatus(sc.StatusCode()) {
			return sc.StatusCode()
		}

		return http.StatusInternalServerError
	}

	if code, ok := a.opts.StatusOverrides[kind]; ok && validStatus(code) {
		return code
	}

	if !kind.Valid() {
		return KindUnclassified.DefaultStatus()
	}

	return kind.DefaultStatus()
}

func entityName(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		if name := nf.EntityName(); name != "" {
			return name
		}
	}

	return defaultEntityName
}
