package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Moderation-API Metrics
var (
	// Pipeline outcomes
	ModerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "moderations_total",
			Help:      "Total moderation pipeline invocations by outcome",
		},
		[]string{"outcome"},
	)

	// Pipeline duration histogram
	ModerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "moderation_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Submission counters
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "submissions_total",
			Help:      "Total submission uploads",
		},
		[]string{"content_type", "status"},
	)

	// Classifier call duration
	ClassifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "classify_duration_seconds",
			Help:      "Classifier request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"status"},
	)

	// Blob store operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "storage_operations_total",
			Help:      "Total blob store operations",
		},
		[]string{"operation", "status"},
	)

	// Signed URL fallbacks
	URLFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "moderation_api",
			Name:      "url_fallbacks_total",
			Help:      "Public URL resolutions that used the direct media template",
		},
	)
)

// RecordModeration records one pipeline invocation.
func RecordModeration(outcome string, durationSec float64) {
	ModerationsTotal.WithLabelValues(outcome).Inc()
	ModerationDuration.Observe(durationSec)
}

// RecordSubmission records a submission upload.
func RecordSubmission(contentType, status string) {
	SubmissionsTotal.WithLabelValues(contentType, status).Inc()
}

// RecordClassify records a classifier call.
func RecordClassify(status string, durationSec float64) {
	ClassifyDuration.WithLabelValues(status).Observe(durationSec)
}

// RecordStorageOperation records a blob store operation.
func RecordStorageOperation(operation, status string) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordURLFallback records a fallback URL resolution.
func RecordURLFallback() {
	URLFallbacksTotal.Inc()
}
