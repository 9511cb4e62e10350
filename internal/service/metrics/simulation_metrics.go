package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SimulationTrials = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stockcast",
			Subsystem: "simulation",
			Name:      "trials",
			Help:      "Trials per Monte Carlo run",
			Buckets:   []float64{10, 100, 500, 1000, 2000, 5000},
		},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockcast",
			Subsystem: "provider",
			Name:      "fetch_seconds",
			Help:      "Latency of bar provider fetches",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockcast",
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Bar provider failures by source",
		},
		[]string{"source"},
	)
)

// Register adds the collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(SimulationTrials, ProviderLatency, ProviderErrors)
	})
}
