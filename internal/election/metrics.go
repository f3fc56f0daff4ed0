package election

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote handling results for the votes-received counter.
const (
	voteAccepted = "accepted"
	voteDropped  = "dropped"
	voteVetoed   = "vetoed"
	voteInstant  = "instant"
)

var (
	// votesReceivedTotal tracks votes by topic and handling result.
	votesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_election_votes_received_total",
			Help: "Total votes received, by topic and handling result",
		},
		[]string{"topic", "result"},
	)

	// electionsDecidedTotal tracks decided rounds by topic.
	electionsDecidedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_election_rounds_decided_total",
			Help: "Total election rounds that produced a winner",
		},
		[]string{"topic"},
	)

	// outcomeFailuresTotal tracks winning actions that failed or panicked.
	outcomeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_election_outcome_failures_total",
			Help: "Total winning candidate actions that returned an error or panicked",
		},
		[]string{"topic"},
	)
)
