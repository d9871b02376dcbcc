package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	peopleFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_people_fetched_total",
		Help: "Total people fetched from the catalog by result",
	}, []string{"result"}) // "found", "not_found"

	peopleCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_people_committed_total",
		Help: "Total resolved people committed to the store",
	})

	chunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_chunks_total",
		Help: "Total load chunks by outcome",
	}, []string{"status"}) // "loaded", "failed"

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_runs_total",
		Help: "Total pipeline runs by final status",
	}, []string{"status"})

	runDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapi_run_duration_seconds",
		Help: "Duration of the last pipeline run in seconds",
	})
)
