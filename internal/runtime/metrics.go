package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the propagation layer decides per invocation:
// whether the transaction was inherited from upstream or originated here,
// and how the debug-sampling decision fell.
type Metrics struct {
	transactions *prometheus.CounterVec
	debugEnabled *prometheus.CounterVec
	chainLength  prometheus.Histogram
}

// NewMetrics registers the hoplog collectors on reg. A nil reg falls back
// to the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoplog",
			Name:      "transactions_total",
			Help:      "Invocations partitioned by whether the correlation id was inherited or originated.",
		}, []string{"origin"}),
		debugEnabled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoplog",
			Name:      "debug_decisions_total",
			Help:      "Debug-logging decisions partitioned by outcome.",
		}, []string{"enabled"}),
		chainLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hoplog",
			Name:      "chain_length",
			Help:      "Observed call-chain depth per invocation.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// ObserveInvocation records the propagation outcome of one invocation.
func (m *Metrics) ObserveInvocation(inherited, debugEnabled bool, chainLength int) {
	if m == nil {
		return
	}

	origin := "originated"
	if inherited {
		origin = "inherited"
	}
	m.transactions.WithLabelValues(origin).Inc()

	enabled := "false"
	if debugEnabled {
		enabled = "true"
	}
	m.debugEnabled.WithLabelValues(enabled).Inc()

	m.chainLength.Observe(float64(chainLength))
}
