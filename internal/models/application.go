// internal/models/application.go
package models

import "time"

// Application tracks one candidate's progress against one job opening. Its
// Stage only ever changes through the lifecycle engine.
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	CandidateID string    `json:"candidateId"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TransitionRecord is one append-only audit entry per committed stage change.
type TransitionRecord struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	FromStage     string    `json:"fromStage"`
	ToStage       string    `json:"toStage"`
	ActorID       string    `json:"actorId"`
	ChangedAt     time.Time `json:"changedAt"`
}
