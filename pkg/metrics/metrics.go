package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ChainsTotal         *prometheus.CounterVec
	ChainDuration       prometheus.Histogram
	ActiveChains        prometheus.Gauge
	ChainStepsTotal     prometheus.Counter
	AnswerPatternsTotal *prometheus.CounterVec
	RenderDuration      prometheus.Histogram
	SubmitDuration      prometheus.Histogram
}

// New registers the collectors with reg. Use prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: []float64{0.01, 0.1, 1, 5, 15, 30, 60, 120, 180, 240},
			},
			[]string{"method", "path", "status"},
		),
		ChainsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_chains_total",
				Help: "Total number of quiz chains by outcome.",
			},
			[]string{"outcome", "error_kind"}, // outcome: completed, failed
		),
		ChainDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_chain_duration_seconds",
				Help:    "Wall time of whole quiz chains.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 180, 240},
			},
		),
		ActiveChains: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "quiz_chains_active",
				Help: "Number of quiz chains currently running.",
			},
		),
		ChainStepsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "quiz_chain_steps_total",
				Help: "Total number of quiz pages answered and submitted.",
			},
		),
		AnswerPatternsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_answer_patterns_total",
				Help: "Questions answered per classifier pattern.",
			},
			[]string{"pattern"},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_render_duration_seconds",
				Help:    "Duration of quiz page renders.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		SubmitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_submit_duration_seconds",
				Help:    "Duration of answer submissions.",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 50},
			},
		),
	}
}
