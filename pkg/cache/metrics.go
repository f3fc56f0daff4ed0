package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitsTotal tracks cache hits.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_cache_hits_total",
		Help: "Total cache hits",
	})

	// CacheMissesTotal tracks cache misses.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_cache_misses_total",
		Help: "Total cache misses",
	})

	// CacheSetsTotal tracks accepted cache writes.
	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_cache_sets_total",
		Help: "Total cache writes accepted by the admission policy",
	})

	// CacheDeletesTotal tracks cache deletes.
	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdstream_cache_deletes_total",
		Help: "Total cache deletes",
	})
)
