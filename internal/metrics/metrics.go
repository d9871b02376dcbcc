// Package metrics pushes the loader's Prometheus metrics to a Pushgateway.
//
// Metrics are defined with promauto next to the code that records them and
// land in the default registry:
//
// Catalog client (internal/platform/swapi):
//   - swapi_requests_total{kind, status} (Counter): requests by kind (count, person, reference) and HTTP status
//   - swapi_request_duration_seconds{kind} (Histogram): request duration by kind
//
// Pipeline (internal/ingest):
//   - swapi_people_fetched_total{result} (Counter): fetched ids by result (found, not_found)
//   - swapi_people_committed_total (Counter): committed records
//   - swapi_chunks_total{status} (Counter): loaded and failed chunks
//   - swapi_runs_total{status} (Counter): finished runs by status
//   - swapi_run_duration_seconds (Gauge): duration of the last run
//
// Reference cache (internal/cache):
//   - swapi_reference_cache_hits_total, swapi_reference_cache_misses_total (Counter)
//   - swapi_reference_cache_errors_total{operation} (Counter)
//
// The loader is a one-shot process, so nothing scrapes it. Push sends one
// snapshot at the end of a run.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const Job = "swapi_loader"

// Push replaces the metrics of this job and instance on the Pushgateway at
// url with the current values from g.
func Push(ctx context.Context, url, instance string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	err := push.New(url, Job).
		Gatherer(g).
		Grouping("instance", instance).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
