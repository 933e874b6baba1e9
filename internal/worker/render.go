package worker

import (
	"fmt"
	"strings"

	"github.com/leavedesk/backend/pkg/queue"
)

func renderDecision(p queue.DecisionEmailPayload) (subject, body string) {
	verb := "updated"
	switch p.Outcome {
	case "approved":
		verb = "approved"
	case "denied":
		verb = "denied"
	}
	leaveType := p.LeaveTypeName
	if leaveType == "" {
		leaveType = "leave"
	}
	subject = fmt.Sprintf("Your %s request has been %s", leaveType, verb)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", orFallback(p.RecipientName, "there"))
	fmt.Fprintf(&b, "Your %s request has been %s.\n", leaveType, verb)
	if p.Outcome == "denied" && p.AdminNotes != "" {
		fmt.Fprintf(&b, "\nNote from your administrator:\n%s\n", p.AdminNotes)
	}
	b.WriteString("\nYou can view the details on your dashboard.\n")
	return subject, b.String()
}

func renderSubmission(p queue.SubmissionEmailPayload) (subject, body string) {
	leaveType := p.LeaveTypeName
	if leaveType == "" {
		leaveType = "leave"
	}
	subject = fmt.Sprintf("New %s request from %s", leaveType, orFallback(p.SubmitterName, "a team member"))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", orFallback(p.RecipientName, "there"))
	fmt.Fprintf(&b, "%s submitted a new %s request that is waiting for review.\n", orFallback(p.SubmitterName, "A team member"), leaveType)
	b.WriteString("\nOpen the admin dashboard to approve or deny it.\n")
	return subject, b.String()
}

func renderWelcome(p queue.WelcomeEmailPayload) (subject, body string) {
	subject = fmt.Sprintf("Welcome to LeaveDesk, %s", p.OrganizationName)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", orFallback(p.RecipientName, "there"))
	fmt.Fprintf(&b, "Your organization %q is ready.\n\n", p.OrganizationName)
	fmt.Fprintf(&b, "Share your organization slug with your team so they can register:\n\n    %s\n\n", p.Slug)
	b.WriteString("As the administrator you can review leave requests, manage notification recipients, and link a Google Sheet from the admin dashboard.\n")
	return subject, b.String()
}

func orFallback(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
