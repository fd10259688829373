package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"EquityPulse/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	riskLevel   *prometheus.GaugeVec
	cache       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitypulse_analyses_total",
				Help: "Total number of analyses by ticker and outcome",
			},
			[]string{"ticker", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitypulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		riskLevel: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "equitypulse_risk_level",
				Help: "Latest attention risk level per ticker (0 low, 1 medium, 2 high)",
			},
			[]string{"ticker"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitypulse_cache_requests_total",
				Help: "Cache lookups by source and result",
			},
			[]string{"source", "result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "equitypulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis counts one finished analysis. outcome is ok, input,
// not_available or error.
func (r *Recorder) RecordAnalysis(ticker, outcome string) {
	r.analyses.WithLabelValues(ticker, outcome).Inc()
}

func (r *Recorder) RecordRiskLevel(ticker string, level models.Severity) {
	r.riskLevel.WithLabelValues(ticker).Set(float64(level))
}

func (r *Recorder) RecordCache(source string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(source, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordAnalysis(string, string)           {}
func (Nop) RecordRiskLevel(string, models.Severity) {}
func (Nop) RecordCache(string, bool)                {}
func (Nop) RecordError(string)                      {}
func (Nop) RecordLatency(string, float64)           {}
