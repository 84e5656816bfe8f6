// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_transitions_committed_total",
			Help: "Total number of committed stage transitions",
		},
		[]string{"to_stage"},
	)

	TransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_transitions_rejected_total",
			Help: "Total number of rejected transition requests",
		},
		[]string{"reason"},
	)

	TransitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pipeline_transition_duration_seconds",
			Help: "Duration of the transition request path in seconds",
		},
	)

	NotificationsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_notifications_enqueued_total",
			Help: "Total number of notification jobs enqueued",
		},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_notifications_dropped_total",
			Help: "Total number of notification jobs dropped on a full queue",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_notifications_dispatched_total",
			Help: "Total number of notification jobs dispatched by outcome",
		},
		[]string{"status"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_notification_queue_depth",
			Help: "Current number of jobs waiting in the notification queue",
		},
	)
)
