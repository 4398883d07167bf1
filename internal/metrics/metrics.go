// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TransitionsTotal counts lifecycle transitions by event and outcome.
var TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "atommarket_listing_transitions_total",
	Help: "Listing lifecycle transitions by event and outcome.",
}, []string{"event", "outcome"})

// UnpinFailures counts media releases that could not be completed. Releases
// are never retried; this counter is the observability hook for the leak.
var UnpinFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "atommarket_media_unpin_failures_total",
	Help: "Media bundle releases that failed after a terminal transition.",
})
