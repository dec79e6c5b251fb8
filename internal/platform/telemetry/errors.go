package telemetry

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrorKindKey is the gin context key under which the error responder stores
// the kind of the rendered error.
const ErrorKindKey = "telemetry.error_kind"

// ErrorMetrics counts rendered API errors by kind and final status.
type ErrorMetrics struct {
	total *prometheus.CounterVec
}

// NewErrorMetrics registers api_errors_total with reg. Registering twice on
// the same registry reuses the existing collector.
func NewErrorMetrics(reg prometheus.Registerer) (*ErrorMetrics, error) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API error responses by error kind and status code.",
	}, []string{"kind", "status"})

	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}

		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}

		total = existing
	}

	return &ErrorMetrics{total: total}, nil
}

// Observe records one rendered error. A nil receiver is a no-op.
func (m *ErrorMetrics) Observe(kind string, status int) {
	if m == nil {
		return
	}

	m.total.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}
