// internal/common/metrics/metrics.go
package metrics

import (
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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// Transitions counts transition attempts; result is "ok" or the error code.
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Application status transition attempts",
		},
		[]string{"from", "to", "result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_submissions_total",
			Help: "Application submissions by result",
		},
		[]string{"result"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notification rows created",
		},
		[]string{"kind"},
	)

	NotificationDeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivery_failures_total",
			Help: "Outbound notification deliveries that failed",
		},
		[]string{"channel"},
	)

	BadgesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Badges newly awarded to candidates",
		},
		[]string{"badge"},
	)

	OutboxProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_entries_processed_total",
			Help: "Outbox entries processed by kind and result (done, retry, failed)",
		},
		[]string{"kind", "result"},
	)

	ListingCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_requests_total",
			Help: "Listing cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
