package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected  *prometheus.CounterVec
	Throttled prometheus.Counter
	Failures  prometheus.Counter
}

// New registers the rate limiting collectors on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masjid_ratelimit_rejected_total",
			Help: "Requests rejected because the caller exhausted its budget",
		}, []string{"class"}),
		Throttled: factory.NewCounter(prometheus.CounterOpts{
			Name: "masjid_ratelimit_global_throttled_total",
			Help: "Write requests rejected by the global throttle",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "masjid_ratelimit_store_failures_total",
			Help: "Rate limit checks that failed open because the bucket store errored",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.Throttled.Inc()
}

func (m *Metrics) IncrementFailures() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}
