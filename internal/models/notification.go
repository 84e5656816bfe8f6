// internal/models/notification.go
package models

import "time"

// NotificationJob is an ephemeral message handed to the notification queue.
// It has no identity beyond its queue position and may be dropped under
// backpressure without violating any system invariant.
type NotificationJob struct {
	RecipientID string    `json:"recipientId"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Priority    string    `json:"priority"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
}

// Notification priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)
