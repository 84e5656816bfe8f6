// internal/notify/templates_test.go
package notify

import (
	"testing"

	"ats-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Your application {{applicationId}} moved from {{fromStage}} to {{toStage}}.",
		map[string]interface{}{
			"applicationId": "app-001",
			"fromStage":     "Applied",
			"toStage":       "Screening",
		})

	assert.Equal(t, "Your application app-001 moved from Applied to Screening.", out)
}

func TestRenderTemplate_StripsUnresolvedPlaceholders(t *testing.T) {
	out := renderTemplate("Hello {{name}}, your code is {{code}}.",
		map[string]interface{}{"name": "Ada"})

	assert.Equal(t, "Hello Ada, your code is .", out)
	assert.NotContains(t, out, "{{")
}

func TestNewSubmissionJob(t *testing.T) {
	app := &models.Application{
		ID:          "app-001",
		CandidateID: "candidate-001",
		Stage:       "Applied",
	}

	job := NewSubmissionJob(app)

	assert.Equal(t, "candidate-001", job.RecipientID)
	assert.Equal(t, "Application submitted", job.Subject)
	assert.Contains(t, job.Body, "app-001")
	assert.Contains(t, job.Body, "Applied")
	assert.Equal(t, models.PriorityNormal, job.Priority)
}

func TestNewStageChangeJob(t *testing.T) {
	app := &models.Application{ID: "app-001", CandidateID: "candidate-001", Stage: "Interview"}
	rec := &models.TransitionRecord{FromStage: "Screening", ToStage: "Interview"}

	job := NewStageChangeJob(app, rec)

	assert.Equal(t, "Application status updated", job.Subject)
	assert.Contains(t, job.Body, "from Screening to Interview")
	assert.Equal(t, models.PriorityNormal, job.Priority)
}

func TestNewStageChangeJob_Hired(t *testing.T) {
	app := &models.Application{ID: "app-001", CandidateID: "candidate-001", Stage: "Hired"}
	rec := &models.TransitionRecord{FromStage: "Offer", ToStage: "Hired"}

	job := NewStageChangeJob(app, rec)

	assert.Equal(t, "Congratulations, you are hired", job.Subject)
	assert.Equal(t, models.PriorityHigh, job.Priority)
}

func TestNewStageChangeJob_Rejected(t *testing.T) {
	app := &models.Application{ID: "app-001", CandidateID: "candidate-001", Stage: "Rejected"}
	rec := &models.TransitionRecord{FromStage: "Interview", ToStage: "Rejected"}

	job := NewStageChangeJob(app, rec)

	assert.Equal(t, "Application update", job.Subject)
	assert.Equal(t, models.PriorityHigh, job.Priority)
	assert.NotContains(t, job.Body, "{{")
}
