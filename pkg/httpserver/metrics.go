package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_http_votes_throttled_total",
		Help: "Total number of vote requests rejected by the rate limiter",
	})
)
