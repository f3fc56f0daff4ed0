package votestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// votesPersistedTotal tracks vote upserts.
	votesPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_votestore_votes_persisted_total",
		Help: "Total vote records written (inserts and overwrites)",
	})

	// outcomesPersistedTotal tracks archived outcomes.
	outcomesPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_votestore_outcomes_persisted_total",
		Help: "Total decided election outcomes archived",
	})
)
