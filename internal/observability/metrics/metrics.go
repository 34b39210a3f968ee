package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the conversational
// scheduling flow.
type ChatMetrics struct {
	turnsTotal    *prometheus.CounterVec
	toolCallTotal *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns processed",
		}, []string{"outcome"}),
		toolCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "chat",
			Name:      "tool_invocations_total",
			Help:      "Total scheduling tool invocations requested by the model",
		}, []string{"tool"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookline",
			Subsystem: "chat",
			Name:      "oracle_latency_seconds",
			Help:      "Latency of model completion round trips",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.toolCallTotal, m.oracleLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveToolCall(tool string) {
	if m == nil {
		return
	}
	m.toolCallTotal.WithLabelValues(tool).Inc()
}

func (m *ChatMetrics) ObserveOracleLatency(model string, seconds float64) {
	if m == nil {
		return
	}
	m.oracleLatency.WithLabelValues(model).Observe(seconds)
}
