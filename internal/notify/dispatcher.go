// internal/notify/dispatcher.go
package notify

import (
	"context"
	"time"

	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/common/metrics"
)

// ContactResolver maps a recipient id to delivery addresses.
type ContactResolver interface {
	Contact(ctx context.Context, candidateID string) (email, phone string, err error)
}

// Dispatcher is the single background consumer of the notification queue. It
// drains FIFO on a fixed cadence and dispatches each job exactly once per
// dequeue: a failed send is logged and discarded, never retried or requeued.
type Dispatcher struct {
	queue    *Queue
	resolver ContactResolver
	sender   Sender
	interval time.Duration
	batch    int
	logger   logger.Logger
}

func NewDispatcher(queue *Queue, resolver ContactResolver, sender Sender, interval time.Duration, batch int, log logger.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if batch <= 0 {
		batch = 32
	}
	return &Dispatcher{
		queue:    queue,
		resolver: resolver,
		sender:   sender,
		interval: interval,
		batch:    batch,
		logger:   log.WithFields(map[string]interface{}{"component": "notification-dispatcher"}),
	}
}

// Run consumes the queue until the context is cancelled. Jobs still queued
// at shutdown are lost, which the delivery contract permits.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("dispatcher started", map[string]interface{}{
		"interval": d.interval.String(),
		"batch":    d.batch,
	})

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped", map[string]interface{}{
				"queued": d.queue.Depth(),
			})
			return
		case <-ticker.C:
			d.drainOnce(ctx)
		}
	}
}

// drainOnce dispatches up to one batch of queued jobs in FIFO order and
// returns the number of jobs taken off the queue.
func (d *Dispatcher) drainOnce(ctx context.Context) int {
	processed := 0
	for processed < d.batch {
		job, ok := d.queue.Dequeue()
		if !ok {
			break
		}
		processed++

		email, phone, err := d.resolver.Contact(ctx, job.RecipientID)
		if err != nil {
			d.logger.Warn("recipient lookup failed, job discarded", map[string]interface{}{
				"recipientId": job.RecipientID,
				"subject":     job.Subject,
				"error":       err,
			})
			metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
			continue
		}

		if err := d.sender.Send(ctx, email, phone, job); err != nil {
			d.logger.Error("notification send failed, job discarded", map[string]interface{}{
				"recipientId": job.RecipientID,
				"subject":     job.Subject,
				"error":       err,
			})
			metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
			continue
		}

		metrics.NotificationsDispatched.WithLabelValues("sent").Inc()
	}
	return processed
}
