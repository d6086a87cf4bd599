package leads

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts intake outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	submissions   *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "submissions_total",
			Help:      "Leads persisted by source",
		}, []string{"source"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "rejected_total",
			Help:      "Lead submissions rejected before persistence",
		}, []string{"reason"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "storage_errors_total",
			Help:      "Lead store failures by operation",
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.rejected, m.storageErrors)
	return m
}

func (m *Metrics) observeSubmission(source string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(source).Inc()
}

func (m *Metrics) observeRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeStorageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}
