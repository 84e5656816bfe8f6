// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"ats-pipeline/internal/models"
	"ats-pipeline/internal/pipeline/stage"
)

// Notification types
const (
	TypeApplicationSubmitted = "application_submitted"
	TypeStageChanged         = "stage_changed"
	TypeApplicationHired     = "application_hired"
	TypeApplicationRejected  = "application_rejected"
)

var templates = map[string]map[string]string{
	TypeApplicationSubmitted: {
		"subject": "Application submitted",
		"body":    "Your application {{applicationId}} was received and is now at stage {{stage}}.",
	},
	TypeStageChanged: {
		"subject": "Application status updated",
		"body":    "Your application {{applicationId}} moved from {{fromStage}} to {{toStage}}.",
	},
	TypeApplicationHired: {
		"subject": "Congratulations, you are hired",
		"body":    "Your application {{applicationId}} reached {{toStage}}. The hiring team will follow up with next steps.",
	},
	TypeApplicationRejected: {
		"subject": "Application update",
		"body":    "Your application {{applicationId}} was not moved forward. Thank you for your interest.",
	},
}

// NewSubmissionJob builds the notification for a freshly created application.
func NewSubmissionJob(app *models.Application) models.NotificationJob {
	data := map[string]interface{}{
		"applicationId": app.ID,
		"stage":         app.Stage,
	}
	tmpl := templates[TypeApplicationSubmitted]
	return models.NotificationJob{
		RecipientID: app.CandidateID,
		Subject:     renderTemplate(tmpl["subject"], data),
		Body:        renderTemplate(tmpl["body"], data),
		Priority:    models.PriorityNormal,
	}
}

// NewStageChangeJob builds the notification for a committed transition.
// Terminal outcomes use their own template and go out high priority.
func NewStageChangeJob(app *models.Application, rec *models.TransitionRecord) models.NotificationJob {
	data := map[string]interface{}{
		"applicationId": app.ID,
		"fromStage":     rec.FromStage,
		"toStage":       rec.ToStage,
	}

	notificationType := TypeStageChanged
	priority := models.PriorityNormal
	switch stage.Stage(rec.ToStage) {
	case stage.Hired:
		notificationType = TypeApplicationHired
		priority = models.PriorityHigh
	case stage.Rejected:
		notificationType = TypeApplicationRejected
		priority = models.PriorityHigh
	}

	tmpl := templates[notificationType]
	return models.NotificationJob{
		RecipientID: app.CandidateID,
		Subject:     renderTemplate(tmpl["subject"], data),
		Body:        renderTemplate(tmpl["body"], data),
		Priority:    priority,
	}
}

// renderTemplate substitutes {{placeholder}} values and strips any
// placeholder left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
