package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/leavedesk/backend/pkg/queue"
)

func TestRenderDecisionApproved(t *testing.T) {
	subject, body := renderDecision(queue.DecisionEmailPayload{
		LeaveRequestID: uuid.New(),
		RecipientName:  "Sam Staff",
		Outcome:        "approved",
		LeaveTypeName:  "Vacation",
	})
	assert.Equal(t, "Your Vacation request has been approved", subject)
	assert.Contains(t, body, "Hi Sam Staff,")
	assert.Contains(t, body, "approved")
	assert.NotContains(t, body, "administrator")
}

func TestRenderDecisionDeniedIncludesNotes(t *testing.T) {
	subject, body := renderDecision(queue.DecisionEmailPayload{
		Outcome:    "denied",
		AdminNotes: "blackout period",
	})
	assert.Equal(t, "Your leave request has been denied", subject)
	assert.Contains(t, body, "Hi there,")
	assert.Contains(t, body, "blackout period")
}

func TestRenderDecisionApprovedNeverIncludesNotes(t *testing.T) {
	_, body := renderDecision(queue.DecisionEmailPayload{
		Outcome:    "approved",
		AdminNotes: "should not leak",
	})
	assert.NotContains(t, body, "should not leak")
}

func TestRenderSubmission(t *testing.T) {
	subject, body := renderSubmission(queue.SubmissionEmailPayload{
		RecipientName: "Pat Admin",
		SubmitterName: "Sam Staff",
		LeaveTypeName: "Sick Leave",
	})
	assert.Equal(t, "New Sick Leave request from Sam Staff", subject)
	assert.Contains(t, body, "Hi Pat Admin,")
	assert.Contains(t, body, "Sam Staff submitted")
}

func TestRenderWelcome(t *testing.T) {
	subject, body := renderWelcome(queue.WelcomeEmailPayload{
		OrganizationName: "Acme Clinic",
		RecipientName:    "Pat Admin",
		Slug:             "acme-clinic",
	})
	assert.Equal(t, "Welcome to LeaveDesk, Acme Clinic", subject)
	assert.Contains(t, body, "acme-clinic")
	assert.Contains(t, body, `"Acme Clinic"`)
}
