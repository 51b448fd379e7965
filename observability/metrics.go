package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics records pool operation activity.
type PoolMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

var (
	poolMetricsOnce sync.Once
	poolRegistry    *PoolMetrics
)

// Pool returns the lazily-initialised pool metrics registry.
func Pool() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolRegistry = &PoolMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dexpool",
				Subsystem: "engine",
				Name:      "operations_total",
				Help:      "Pool operations segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "dexpool",
				Subsystem: "engine",
				Name:      "operation_seconds",
				Help:      "Pool operation execution latency.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"op"}),
		}
		prometheus.MustRegister(poolRegistry.operations, poolRegistry.latency)
	})
	return poolRegistry
}

// Observe records one operation's outcome and duration.
func (m *PoolMetrics) Observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}
