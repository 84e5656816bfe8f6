// internal/notify/queue.go
package notify

import (
	"time"

	"ats-pipeline/internal/common/metrics"
	"ats-pipeline/internal/models"
)

// Queue is the bounded buffer between transition commits and notification
// delivery. Producers contend only on enqueue; the dispatcher is the sole
// consumer. A full queue drops the job rather than blocking the request path.
type Queue struct {
	jobs chan models.NotificationJob
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 256
	}
	return &Queue{
		jobs: make(chan models.NotificationJob, capacity),
	}
}

// TryEnqueue offers a job without blocking. It returns false when the queue
// is at capacity; the caller drops the job and the committed transition is
// unaffected.
func (q *Queue) TryEnqueue(job models.NotificationJob) bool {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		metrics.NotificationsEnqueued.Inc()
		metrics.QueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		metrics.NotificationsDropped.Inc()
		return false
	}
}

// Dequeue removes the oldest job without blocking. ok is false when the
// queue is empty.
func (q *Queue) Dequeue() (models.NotificationJob, bool) {
	select {
	case job := <-q.jobs:
		metrics.QueueDepth.Set(float64(len(q.jobs)))
		return job, true
	default:
		return models.NotificationJob{}, false
	}
}

// Depth returns the number of jobs currently waiting.
func (q *Queue) Depth() int {
	return len(q.jobs)
}

// Capacity returns the maximum number of jobs the queue holds.
func (q *Queue) Capacity() int {
	return cap(q.jobs)
}
