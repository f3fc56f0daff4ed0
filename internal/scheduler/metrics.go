package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tallyDurationSeconds tracks how long closing a round takes.
	tallyDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crowdstream_scheduler_tally_duration_seconds",
		Help:    "Duration of tallying and dispatching one election round",
		Buckets: prometheus.DefBuckets,
	})

	// roundsOpenedTotal tracks rounds opened per topic.
	roundsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_scheduler_rounds_opened_total",
			Help: "Total election rounds opened",
		},
		[]string{"topic"},
	)
)
