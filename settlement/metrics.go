package settlement

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transactions submitted by the executor, by outcome status.
	prometheusSettlementChunks *prometheus.CounterVec
	// Accounts closed by confirmed transactions.
	prometheusSettlementAccountsClosed prometheus.Counter
	// Rent held by accounts of confirmed transactions.
	prometheusSettlementRentLamports prometheus.Counter
	// Duration of settlement runs.
	prometheusSettlementRunDuration prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusSettlementChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "janitor",
			Subsystem: "settlement",
			Name:      "chunks_total",
			Help:      "Number of BatchClean transactions by outcome status",
		},
		[]string{"status"},
	)

	prometheusSettlementAccountsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "janitor",
			Subsystem: "settlement",
			Name:      "accounts_closed_total",
			Help:      "Number of token accounts in confirmed transactions",
		},
	)

	prometheusSettlementRentLamports = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "janitor",
			Subsystem: "settlement",
			Name:      "rent_lamports_total",
			Help:      "Rent held by token accounts in confirmed transactions",
		},
	)

	prometheusSettlementRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "janitor",
			Subsystem: "settlement",
			Name:      "run_duration_seconds",
			Help:      "Duration of settlement runs",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
}

func observeOutcome(o Outcome) {
	prometheusSettlementChunks.WithLabelValues(o.Status.String()).Inc()

	if o.Status == StatusConfirmed {
		prometheusSettlementAccountsClosed.Add(float64(len(o.Accounts)))
		prometheusSettlementRentLamports.Add(float64(o.Rent))
	}
}
