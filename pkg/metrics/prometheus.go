package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
)

const namespace = "demandcast"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	calls      *prometheus.CounterVec
	errors     *prometheus.CounterVec
	confidence prometheus.Histogram
	latency    *prometheus.HistogramVec
}

var _ repository.Metrics = (*Recorder)(nil)

// New registers the recorder's collectors with the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_calls_total",
				Help:      "Contract calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors by reason code",
			},
			[]string{"code"},
		),
		confidence: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forecast_confidence",
				Help:      "Confidence level of generated forecasts",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of contract operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordCall(op models.Operation, success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	r.calls.WithLabelValues(string(op), result).Inc()
}

func (r *Recorder) RecordError(code string) {
	r.errors.WithLabelValues(code).Inc()
}

func (r *Recorder) RecordConfidence(level int64) {
	r.confidence.Observe(float64(level))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
