// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultRequestTimeout bounds handler execution.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultClientRetryMaxAttempts is the default number of attempts per request.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before the circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close the circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultAPIPattern selects the requests rendered as JSON error envelopes.
	DefaultAPIPattern = "api/*"

	// DefaultLocale is the fallback locale for error messages.
	DefaultLocale = "en"
)

// Kind toggle names accepted under exceptions.kinds.
var kindNames = []string{
	"http_response", "model_not_found", "not_found_http", "method_not_allowed", "validation",
	"authentication", "authorization", "query_builder", "http_interface", "generic",
}

// Sub-kind toggle names accepted under exceptions.query_errors.
var queryErrorNames = []string{
	"invalid_filter_query", "invalid_include_query", "invalid_sort_query", "invalid_field_query",
	"invalid_append_query", "unknown_included_fields_query", "invalid_filter_value", "invalid_direction",
	"allowed_fields_must_be_called_before_allowed_includes",
}

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Auth       AuthConfig       `koanf:"auth"`
	Exceptions ExceptionsConfig `koanf:"exceptions" validate:"required"`
	Client     ClientConfig     `koanf:"client"     validate:"required"`
	Services   ServicesConfig   `koanf:"services"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,hostname_port|url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig names the gateway headers carrying the caller identity.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	SubjectHeader string `koanf:"subject_header" validate:"required_if=Enabled true"`
	RolesHeader   string `koanf:"roles_header"`
	ScopesHeader  string `koanf:"scopes_header"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Carrier ServiceEndpointConfig `koanf:"carrier"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
// A disabled endpoint is not called.
type ServiceEndpointConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	Name    string `koanf:"name"     validate:"required_if=Enabled true"`
	APIKey  string `koanf:"api_key"`
}

// ExceptionsConfig controls how errors are rendered into API responses.
type ExceptionsConfig struct {
	// APIPattern is a path glob; matching requests get JSON error envelopes.
	APIPattern string `koanf:"api_pattern" validate:"required"`

	// ShowDetails exposes raw messages of unclassified errors.
	ShowDetails bool `koanf:"show_details"`

	// Locale is the fallback locale for messages.
	Locale string `koanf:"locale" validate:"required,bcp47_language_tag"`

	// LangDir optionally holds {locale}.yaml files overriding bundled messages.
	LangDir string `koanf:"lang_dir" validate:"omitempty,dir"`

	Logging ExceptionLoggingConfig `koanf:"logging"`

	Kinds       map[string]bool `koanf:"kinds"        validate:"dive,keys,oneof=http_response model_not_found not_found_http method_not_allowed validation authentication authorization query_builder http_interface generic,endkeys"`
	QueryErrors map[string]bool `koanf:"query_errors" validate:"dive,keys,oneof=invalid_filter_query invalid_include_query invalid_sort_query invalid_field_query invalid_append_query unknown_included_fields_query invalid_filter_value invalid_direction allowed_fields_must_be_called_before_allowed_includes,endkeys"`

	// StatusCodes overrides the status of fixed-status kinds.
	StatusCodes map[string]int `koanf:"status_codes" validate:"dive,keys,oneof=model_not_found resource_not_found method_not_allowed validation authentication authorization bad_request server_error,endkeys,min=100,max=599"`

	// TranslationKeys maps a message key to the catalog key used instead.
	TranslationKeys map[string]string `koanf:"translation_keys" validate:"dive,keys,oneof=model_not_found resource_not_found method_not_allowed validation_failed unauthenticated unauthorized bad_request http_exception server_error,endkeys,required"`
}

// ExceptionLoggingConfig controls the log event for unclassified errors.
type ExceptionLoggingConfig struct {
	Enabled bool             `koanf:"enabled"`
	Level   string           `koanf:"level"   validate:"required,oneof=debug info warn error"`
	Context LogContextConfig `koanf:"context"`
}

// LogContextConfig selects the attributes attached to that event.
type LogContextConfig struct {
	ErrorType      bool `koanf:"error_type"`
	ErrorMessage   bool `koanf:"error_message"`
	Stack          bool `koanf:"stack"`
	RequestURL     bool `koanf:"request_url"`
	RequestMethod  bool `koanf:"request_method"`
	RequestHeaders bool `koanf:"request_headers"`
	UserID         bool `koanf:"user_id"`
}

// DisabledKinds returns the kind toggle names switched off.
func (e *ExceptionsConfig) DisabledKinds() []string {
	return disabled(e.Kinds)
}

// DisabledQueryErrors returns the query sub-kind names switched off.
func (e *ExceptionsConfig) DisabledQueryErrors() []string {
	return disabled(e.QueryErrors)
}

func disabled(toggles map[string]bool) []string {
	var out []string

	for name, on := range toggles {
		if !on {
			out = append(out, name)
		}
	}

	return out
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	d := map[string]any{
		"app.name":        "go-api-errors",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  DefaultRequestTimeout.String(),
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "go-api-errors",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.carrier.enabled":  false,
		"services.carrier.base_url": "",
		"services.carrier.name":     "carrier",
		"services.carrier.api_key":  "",

		"auth.enabled":        true,
		"auth.subject_header": "X-User-ID",
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",

		"exceptions.api_pattern":  DefaultAPIPattern,
		"exceptions.show_details": false,
		"exceptions.locale":       DefaultLocale,
		"exceptions.lang_dir":     "",

		"exceptions.logging.enabled":                 true,
		"exceptions.logging.level":                   "error",
		"exceptions.logging.context.error_type":      true,
		"exceptions.logging.context.error_message":   true,
		"exceptions.logging.context.stack":           false,
		"exceptions.logging.context.request_url":     true,
		"exceptions.logging.context.request_method":  true,
		"exceptions.logging.context.request_headers": false,
		"exceptions.logging.context.user_id":         true,
	}

	for _, name := range kindNames {
		d["exceptions.kinds."+name] = true
	}

	for _, name := range queryErrorNames {
		d["exceptions.query_errors."+name] = true
	}

	return d
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKeyMapper(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_EXCEPTIONS_SHOW_DETAILS to exceptions.show_details.
// Variables that match no known key have every underscore turned into a dot.
func envKeyMapper(known []string) func(string) string {
	index := make(map[string]string, len(known))
	for _, key := range known {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := index[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
