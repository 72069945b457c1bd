package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutreachMetrics exposes counters/histograms for outreach conversation flows.
type OutreachMetrics struct {
	conversationsStarted  prometheus.Counter
	conversationsTerminal *prometheus.CounterVec
	llmFallbacks          *prometheus.CounterVec
	outboundTotal         *prometheus.CounterVec
	replyWaitSeconds      prometheus.Histogram
}

func NewOutreachMetrics(reg prometheus.Registerer) *OutreachMetrics {
	m := &OutreachMetrics{
		conversationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "conversation",
			Name:      "started_total",
			Help:      "Total conversations started by the dispatcher",
		}),
		conversationsTerminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "conversation",
			Name:      "terminal_total",
			Help:      "Conversations reaching a terminal status",
		}, []string{"status"}),
		llmFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "llm",
			Name:      "fallback_total",
			Help:      "LLM completions replaced by canned fallback text",
		}, []string{"stage"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Outbound messages by kind and result",
		}, []string{"kind", "status"}),
		replyWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outreach",
			Subsystem: "conversation",
			Name:      "reply_wait_seconds",
			Help:      "Time spent waiting for a lead reply",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 180, 240, 300},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.conversationsStarted,
		m.conversationsTerminal,
		m.llmFallbacks,
		m.outboundTotal,
		m.replyWaitSeconds,
	)
	return m
}

func (m *OutreachMetrics) ObserveConversationStarted() {
	if m == nil {
		return
	}
	m.conversationsStarted.Inc()
}

func (m *OutreachMetrics) ObserveConversationTerminal(status string) {
	if m == nil {
		return
	}
	m.conversationsTerminal.WithLabelValues(status).Inc()
}

func (m *OutreachMetrics) ObserveLLMFallback(stage string) {
	if m == nil {
		return
	}
	m.llmFallbacks.WithLabelValues(stage).Inc()
}

func (m *OutreachMetrics) ObserveOutbound(kind, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(kind, status).Inc()
}

func (m *OutreachMetrics) ObserveReplyWait(seconds float64) {
	if m == nil {
		return
	}
	m.replyWaitSeconds.Observe(seconds)
}
