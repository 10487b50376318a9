package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus collectors. All collectors are
// registered against the injected registerer at construction.
type Metrics struct {
	operations  *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	sharesTotal prometheus.Gauge
	kValue      prometheus.Gauge
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Pool operations executed, labeled by operation and outcome.",
		}, []string{"operation", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pool operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		sharesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "amm",
			Subsystem: "pool",
			Name:      "total_liquidity_shares",
			Help:      "Total liquidity-share supply, including the locked minimum.",
		}),
		kValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "amm",
			Subsystem: "pool",
			Name:      "k_value",
			Help:      "Constant-product invariant reserve0*reserve1.",
		}),
	}
	reg.MustRegister(m.operations, m.opDuration, m.sharesTotal, m.kValue)
	return m
}
