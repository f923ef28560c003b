// Package metrics exposes Prometheus instruments for batch passes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Conversation outcomes.
const (
	ResultProcessed = "processed"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
)

type Metrics struct {
	passes        prometheus.Counter
	conversations *prometheus.CounterVec
	passDuration  prometheus.Histogram
}

// New creates the instruments and registers them with reg. A nil reg leaves
// them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_passes_total",
			Help: "Number of completed batch passes over the conversation store.",
		}),
		conversations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profiler_conversations_total",
			Help: "Conversations handled, by outcome.",
		}, []string{"result"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiler_pass_duration_seconds",
			Help:    "Duration of a full batch pass.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.passes, m.conversations, m.passDuration)
	}
	return m
}

func (m *Metrics) ObserveConversation(result string) {
	m.conversations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePass(d time.Duration) {
	m.passes.Inc()
	m.passDuration.Observe(d.Seconds())
}
