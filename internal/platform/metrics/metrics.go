package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by costume and tool counters.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	CostumeLookups  *prometheus.CounterVec
	CostumeRemovals *prometheus.CounterVec
	ToolCalls       *prometheus.CounterVec
	ChatMessages    *prometheus.CounterVec
	ModelFailures   *prometheus.CounterVec
	ModelLatency    *prometheus.HistogramVec
	BreakerOpens    *prometheus.CounterVec
	ActiveSockets   prometheus.Gauge
	EmailsSent      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on reg. A nil registerer
// uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CostumeLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_costume_lookups_total",
			Help: "Costume detail lookups, labeled by outcome",
		}, []string{"outcome"}),
		CostumeRemovals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_costume_removals_total",
			Help: "Costume removals, labeled by outcome",
		}, []string{"outcome"}),
		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_tool_calls_total",
			Help: "Assistant tool invocations, labeled by tool and outcome",
		}, []string{"tool", "outcome"}),
		ChatMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_chat_messages_total",
			Help: "User messages handled, labeled by assistant",
		}, []string{"assistant"}),
		ModelFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_model_failures_total",
			Help: "Failed model calls, labeled by assistant",
		}, []string{"assistant"}),
		ModelLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "costumedesk_model_latency_seconds",
			Help:    "Latency of model generate calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"assistant"}),
		BreakerOpens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_circuit_breaker_opens_total",
			Help: "Circuit breaker transitions to open, labeled by breaker name",
		}, []string{"breaker"}),
		ActiveSockets: f.NewGauge(prometheus.GaugeOpts{
			Name: "costumedesk_chat_sockets_active",
			Help: "Currently open chat websocket connections",
		}),
		EmailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "costumedesk_emails_sent_total",
			Help: "Emails handed to the mail transport, labeled by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementCostumeLookup records one lookup outcome.
func (m *Metrics) IncrementCostumeLookup(outcome string) {
	m.CostumeLookups.WithLabelValues(outcome).Inc()
}

// IncrementCostumeRemoval records one removal outcome.
func (m *Metrics) IncrementCostumeRemoval(outcome string) {
	m.CostumeRemovals.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementToolCall(tool, outcome string) {
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) IncrementChatMessage(assistant string) {
	m.ChatMessages.WithLabelValues(assistant).Inc()
}

func (m *Metrics) IncrementModelFailure(assistant string) {
	m.ModelFailures.WithLabelValues(assistant).Inc()
}

func (m *Metrics) ObserveModelLatency(assistant string, seconds float64) {
	m.ModelLatency.WithLabelValues(assistant).Observe(seconds)
}

func (m *Metrics) IncrementBreakerOpen(name string) {
	m.BreakerOpens.WithLabelValues(name).Inc()
}

func (m *Metrics) IncrementEmail(outcome string) {
	m.EmailsSent.WithLabelValues(outcome).Inc()
}
