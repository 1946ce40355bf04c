package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveriesTotal counts terminal delivery results per target.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatchd_deliveries_total",
			Help: "Total webhook deliveries by terminal result",
		},
		[]string{"target", "result"},
	)

	// AttemptsTotal counts individual HTTP attempts per target.
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatchd_attempts_total",
			Help: "Total webhook delivery attempts",
		},
		[]string{"target"},
	)

	// RetryDelaySeconds observes the delay chosen before each retry.
	RetryDelaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatchd_retry_delay_seconds",
			Help:    "Delay applied before retry attempts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
		[]string{"target"},
	)

	// QueueDepth tracks pending deliveries per target.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatchd_queue_depth",
			Help: "Number of pending deliveries in the queue",
		},
		[]string{"target"},
	)
)
