package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the validation endpoints.
type Metrics struct {
	Validations        *prometheus.CounterVec
	FieldErrors        *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

// New registers the validation metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the validation metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "maklarsystem_validations_total",
			Help: "Validation requests by record, variant and outcome",
		}, []string{"record", "variant", "outcome"}),
		FieldErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "maklarsystem_validation_field_errors_total",
			Help: "Field errors reported, by record and kind",
		}, []string{"record", "kind"}),
		ValidationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maklarsystem_validation_duration_seconds",
			Help:    "Duration of validation requests",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"record"}),
	}
}

// IncrementValidation records one validation outcome ("valid" or "invalid").
func (m *Metrics) IncrementValidation(record, variant, outcome string) {
	m.Validations.WithLabelValues(record, variant, outcome).Inc()
}

func (m *Metrics) IncrementFieldError(record, kind string) {
	m.FieldErrors.WithLabelValues(record, kind).Inc()
}

// ObserveValidation records the duration of a validation request.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveValidation(record string, start time.Time) {
	m.ValidationDuration.WithLabelValues(record).Observe(time.Since(start).Seconds())
}
