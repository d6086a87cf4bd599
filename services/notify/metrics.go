package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records notification outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	sent     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "notifications_total",
			Help:      "Lead notification attempts by provider and outcome",
		}, []string{"provider", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leads",
			Name:      "notification_duration_seconds",
			Help:      "Time spent delivering a lead notification",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sent, m.duration)
	return m
}

func (m *Metrics) observe(provider string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.sent.WithLabelValues(provider, status).Inc()
	m.duration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
