package screen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes screen outcomes.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Latency   prometheus.Histogram
}

// NewMetrics registers the screen metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_screen_decisions_total",
			Help: "Content screen verdicts by source and decision",
		}, []string{"source", "decision"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_screen_fallbacks_total",
			Help: "Heuristic fallbacks by failure kind",
		}, []string{"kind"}),
		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "masjid_screen_duration_seconds",
			Help:    "Duration of content screening including fallback",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) ObserveDecision(source Source, decision Decision, d time.Duration) {
	if m != nil {
		m.Decisions.WithLabelValues(string(source), string(decision)).Inc()
		m.Latency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncFallback(kind FailureKind) {
	if m != nil {
		m.Fallbacks.WithLabelValues(string(kind)).Inc()
	}
}
