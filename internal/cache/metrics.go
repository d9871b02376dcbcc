package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_reference_cache_hits_total",
		Help: "Total number of reference cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_reference_cache_misses_total",
		Help: "Total number of reference cache misses",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_reference_cache_errors_total",
		Help: "Total number of reference cache operation errors",
	}, []string{"operation"}) // "get", "set"
)
