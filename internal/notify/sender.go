// internal/notify/sender.go
package notify

import (
	"context"

	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"
)

// Sender delivers one notification to a resolved contact. Implementations
// must not retry; the dispatcher discards failed jobs.
type Sender interface {
	Send(ctx context.Context, email, phone string, job models.NotificationJob) error
}

// LogSender writes notifications to the log instead of sending them. It is
// the default transport for development and tests.
type LogSender struct {
	logger logger.Logger
}

func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{
		logger: log.WithFields(map[string]interface{}{"sender": "log"}),
	}
}

func (s *LogSender) Send(_ context.Context, email, _ string, job models.NotificationJob) error {
	s.logger.Info("notification dispatched", map[string]interface{}{
		"recipientId": job.RecipientID,
		"email":       email,
		"subject":     job.Subject,
		"body":        job.Body,
		"priority":    job.Priority,
	})
	return nil
}
