package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Saved search edit metrics.
var (
	SavedSearchesMatched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ssbulk",
			Name:      "saved_searches_matched",
			Help:      "Saved searches selected by the last run",
		},
	)

	SavedSearchUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssbulk",
			Name:      "saved_search_updates_total",
			Help:      "Saved search updates by action and outcome",
		},
		[]string{"action", "status"}, // status: "ok" / "error" / "dry_run"
	)

	MalformedAnnotationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ssbulk",
			Name:      "malformed_annotations_total",
			Help:      "Parameter values that did not decode as a JSON object and were reset",
		},
	)
)

var registered bool

// Register registers all ssbulk metrics on the default registry. Safe to call more than once.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(SavedSearchesMatched)
	prometheus.MustRegister(SavedSearchUpdatesTotal)
	prometheus.MustRegister(MalformedAnnotationsTotal)
	prometheus.MustRegister(restRequestDuration)
	prometheus.MustRegister(restRequestsTotal)
	registered = true
}

// WriteTextfile writes the default registry in text exposition format,
// for pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
