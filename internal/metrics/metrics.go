package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded on the generation counter.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeCounterError = "counter_error"
	OutcomeRenderError  = "render_error"
)

type Metrics struct {
	ReceiptsTotal      *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	CounterFailures    prometheus.Counter
	RateLimited        prometheus.Counter
}

// New registers the receipt metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReceiptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "receipt_generations_total",
			Help: "Receipt generation attempts by renderer and outcome",
		}, []string{"renderer", "outcome"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "receipt_render_duration_seconds",
			Help:    "Time spent rendering and encoding a receipt image",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"renderer"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "receipt_validation_failures_total",
			Help: "Rejected receipt requests by validation kind",
		}, []string{"kind"}),
		CounterFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "receipt_counter_failures_total",
			Help: "Failures reading or advancing the receipt sequence",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "receipt_rate_limited_total",
			Help: "Generation requests rejected by the rate limiter",
		}),
	}
}

// The methods below are no-ops on a nil *Metrics so components can run
// without instrumentation.

func (m *Metrics) ObserveGeneration(renderer, outcome string) {
	if m == nil {
		return
	}
	m.ReceiptsTotal.WithLabelValues(renderer, outcome).Inc()
}

func (m *Metrics) ObserveRender(renderer string, d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(renderer).Observe(d.Seconds())
}

func (m *Metrics) IncrementValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCounterFailures() {
	if m == nil {
		return
	}
	m.CounterFailures.Inc()
}

func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}
