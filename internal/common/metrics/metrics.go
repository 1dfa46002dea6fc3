// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	FilterEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_filter_evaluations_total",
			Help: "Total number of filter evaluations, labelled by whether anything matched",
		},
		[]string{"outcome"},
	)

	FilterVisibleRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listing_filter_visible_ratio",
			Help:    "Share of listings left visible by an evaluation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	CatalogCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_catalog_cache_requests_total",
			Help: "Catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveEvaluation records one filter evaluation over total listings.
func ObserveEvaluation(visible, total int) {
	outcome := "matched"
	if visible == 0 {
		outcome = "no_results"
	}
	FilterEvaluations.WithLabelValues(outcome).Inc()
	if total > 0 {
		FilterVisibleRatio.Observe(float64(visible) / float64(total))
	}
}

// ObserveJob records a finished job. errorCode is empty on success.
func ObserveJob(taskType string, start time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
