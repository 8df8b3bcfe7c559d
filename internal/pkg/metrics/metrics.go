// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statussnapshot"

// Fetch targets used as the "target" label.
const (
	TargetStatusPage = "statuspage"
	TargetRegional   = "regional"
)

var (
	// HTTPRequestDuration tracks latency of the snapshot server.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status_code"},
	)

	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "total",
			Help:      "Upstream fetches by target and result source (live, summary, fallback)",
		},
		[]string{"target", "source"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Time spent fetching an upstream status endpoint",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"target"},
	)

	snapshotIncidents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "incidents",
			Help:      "Number of incident records written per provider",
		},
		[]string{"provider"},
	)

	snapshotRegions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "regions",
			Help:      "Number of region records written by status",
		},
		[]string{"status"},
	)

	snapshotLastWrite = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "last_write_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot write",
		},
	)
)

// RecordFetch records one upstream fetch.
func RecordFetch(target, source string, duration time.Duration) {
	fetchTotal.WithLabelValues(target, source).Inc()
	fetchDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// RecordIncidents sets the number of incident records for a provider.
func RecordIncidents(provider string, count int) {
	snapshotIncidents.WithLabelValues(provider).Set(float64(count))
}

// RecordRegions sets the number of region records with a given status.
func RecordRegions(status string, count int) {
	snapshotRegions.WithLabelValues(status).Set(float64(count))
}

// RecordWrite marks a successful snapshot write.
func RecordWrite(at time.Time) {
	snapshotLastWrite.Set(float64(at.Unix()))
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
