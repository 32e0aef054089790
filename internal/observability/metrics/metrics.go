package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClassifierMetrics exposes counters/histograms for escalation decisions.
type ClassifierMetrics struct {
	decisionsTotal *prometheus.CounterVec
	oracleFailures *prometheus.CounterVec
	decideLatency  *prometheus.HistogramVec
}

func NewClassifierMetrics(reg prometheus.Registerer) *ClassifierMetrics {
	m := &ClassifierMetrics{
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escalation",
			Subsystem: "classifier",
			Name:      "decisions_total",
			Help:      "Total escalation decisions by turn and outcome",
		}, []string{"turn", "escalate"}),
		oracleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escalation",
			Subsystem: "classifier",
			Name:      "oracle_failures_total",
			Help:      "Oracle calls recovered by the safe fallback decision",
		}, []string{"turn", "reason"}),
		decideLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "escalation",
			Subsystem: "classifier",
			Name:      "decide_latency_seconds",
			Help:      "Latency of a single classification call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"turn"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.decisionsTotal, m.oracleFailures, m.decideLatency)
	return m
}

func (m *ClassifierMetrics) ObserveDecision(turn string, escalate bool) {
	if m == nil {
		return
	}
	label := "false"
	if escalate {
		label = "true"
	}
	m.decisionsTotal.WithLabelValues(turn, label).Inc()
}

func (m *ClassifierMetrics) ObserveOracleFailure(turn, reason string) {
	if m == nil {
		return
	}
	m.oracleFailures.WithLabelValues(turn, reason).Inc()
}

func (m *ClassifierMetrics) ObserveDecideLatency(turn string, seconds float64) {
	if m == nil {
		return
	}
	m.decideLatency.WithLabelValues(turn).Observe(seconds)
}
