// Package metrics provides Prometheus metrics for the meet import service.
//
// A custom registry is used instead of the default one so /metrics exposes
// only the import metrics, without the Go runtime collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "swimmeet"

var registry = prometheus.NewRegistry()

var (
	rowsProcessed = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_processed_total",
		Help:      "Rows accepted by an import pipeline",
	}, []string{"pipeline"})

	rowsSkipped = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_skipped_total",
		Help:      "Rows or course slots skipped by an import pipeline, by reason",
	}, []string{"pipeline", "reason"})

	swimmersTouched = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_swimmers_touched_total",
		Help:      "Swimmer identity upserts issued by the entries pipeline",
	})

	duplicatesSuppressed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_duplicates_suppressed_total",
		Help:      "Performance inserts dropped by storage conflict resolution",
	})

	importDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "import_duration_seconds",
		Help:      "Wall-clock duration of one file import",
		Buckets:   prometheus.DefBuckets,
	}, []string{"pipeline"})
)

// RecordRowProcessed increments the processed counter for a pipeline.
func RecordRowProcessed(pipeline string) {
	rowsProcessed.WithLabelValues(pipeline).Inc()
}

// RecordRowSkipped increments the skipped counter for a pipeline and reason.
func RecordRowSkipped(pipeline, reason string) {
	rowsSkipped.WithLabelValues(pipeline, reason).Inc()
}

// RecordSwimmerTouched increments the swimmer upsert counter.
func RecordSwimmerTouched() {
	swimmersTouched.Inc()
}

// RecordDuplicateSuppressed increments the duplicate suppression counter.
func RecordDuplicateSuppressed() {
	duplicatesSuppressed.Inc()
}

// RecordImportDuration records the duration of one file import.
func RecordImportDuration(pipeline string, d time.Duration) {
	importDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}

// Registry returns the custom registry for the /metrics handler.
func Registry() *prometheus.Registry {
	return registry
}
