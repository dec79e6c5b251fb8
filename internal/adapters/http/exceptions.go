package http

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/platform/config"
	"github.com/jsamuelsen/go-api-errors/internal/platform/logging"
	"github.com/jsamuelsen/go-api-errors/internal/ports"
	"github.com/jsamuelsen/go-api-errors/internal/query"
)

// NewRenderer builds the error pipeline described by cfg.
func NewRenderer(
	cfg *config.ExceptionsConfig,
	translator ports.Translator,
	builder ports.ResponseBuilder,
	logger ports.ErrorLogger,
) (*apierror.Renderer, error) {
	classifierOpts, err := classifierOptions(cfg)
	if err != nil {
		return nil, err
	}

	assemblerOpts, err := assemblerOptions(cfg)
	if err != nil {
		return nil, err
	}

	return apierror.NewRenderer(
		apierror.NewClassifier(classifierOpts),
		apierror.NewAssembler(translator, builder, logger, assemblerOpts),
	), nil
}

func classifierOptions(cfg *config.ExceptionsConfig) (apierror.ClassifierOptions, error) {
	opts := apierror.ClassifierOptions{
		DisabledKinds:       make(map[apierror.Kind]bool),
		DisabledQueryErrors: make(map[query.ErrorKind]bool),
	}

	for _, name := range cfg.DisabledKinds() {
		kind, ok := apierror.ParseKind(name)
		if !ok {
			return opts, fmt.Errorf("unknown exception kind %q", name)
		}

		opts.DisabledKinds[kind] = true
	}

	for _, name := range cfg.DisabledQueryErrors() {
		kind, ok := query.ParseErrorKind(name)
		if !ok {
			return opts, fmt.Errorf("unknown query error %q", name)
		}

		opts.DisabledQueryErrors[kind] = true
	}

	return opts, nil
}

func assemblerOptions(cfg *config.ExceptionsConfig) (apierror.Options, error) {
	opts := apierror.Options{
		Debug:           cfg.ShowDetails,
		LogErrors:       cfg.Logging.Enabled,
		LogLevel:        logging.ParseLevel(cfg.Logging.Level),
		StatusOverrides: make(map[apierror.Kind]int, len(cfg.StatusCodes)),
		TranslationKeys: cfg.TranslationKeys,
	}

	for key, code := range cfg.StatusCodes {
		kind, ok := apierror.ParseStatusKey(key)
		if !ok {
			return opts, fmt.Errorf("unknown status code key %q", key)
		}

		opts.StatusOverrides[kind] = code
	}

	return opts, nil
}

// NewErrorLogger adapts the configured log context toggles.
func NewErrorLogger(cfg *config.ExceptionsConfig, fallback *slog.Logger) *logging.ErrorLogger {
	ctx := cfg.Logging.Context

	return logging.NewErrorLogger(fallback, logging.ContextFields{
		ErrorType:      ctx.ErrorType,
		ErrorMessage:   ctx.ErrorMessage,
		Stack:          ctx.Stack,
		RequestURL:     ctx.RequestURL,
		RequestMethod:  ctx.RequestMethod,
		RequestHeaders: ctx.RequestHeaders,
		UserID:         ctx.UserID,
	})
}
