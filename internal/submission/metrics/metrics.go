package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the submission lifecycle.
type Metrics struct {
	// Submissions created by kind and initial status
	Created *prometheus.CounterVec

	// Confirmation attempts by kind and outcome
	Confirmations *prometheus.CounterVec

	// Promotions into canonical data by kind and trigger (threshold, moderator)
	Promotions *prometheus.CounterVec

	Rejections *prometheus.CounterVec

	// Lifecycle operation latency by operation name
	OperationLatency *prometheus.HistogramVec
}

// New registers the submission metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Created: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_submissions_created_total",
			Help: "Submissions created by kind and initial status",
		}, []string{"kind", "status"}),

		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_confirmations_total",
			Help: "Confirmation attempts by kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "accepted", "duplicate", "conflict"

		Promotions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_promotions_total",
			Help: "Submissions promoted into canonical data",
		}, []string{"kind", "trigger"}),

		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_rejections_total",
			Help: "Submissions rejected by a moderator",
		}, []string{"kind"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "masjid_submission_operation_duration_seconds",
			Help:    "Duration of submission lifecycle operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated(kind, status string) {
	if m != nil {
		m.Created.WithLabelValues(kind, status).Inc()
	}
}

func (m *Metrics) IncrementConfirmation(kind, outcome string) {
	if m != nil {
		m.Confirmations.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncrementPromotion(kind, trigger string) {
	if m != nil {
		m.Promotions.WithLabelValues(kind, trigger).Inc()
	}
}

func (m *Metrics) IncrementRejection(kind string) {
	if m != nil {
		m.Rejections.WithLabelValues(kind).Inc()
	}
}

// ObserveLatency records how long a lifecycle operation took.
func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}
