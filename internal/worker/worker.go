// Package worker processes queued notification jobs: it renders plain-text
// emails for leave request events, delivers them over SMTP, and records the
// outcome in the delivery log.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/notifications"
	"github.com/leavedesk/backend/pkg/mailer"
	"github.com/leavedesk/backend/pkg/queue"
)

// NotificationProcessor consumes notification jobs from the queue and sends email.
type NotificationProcessor struct {
	mailer *mailer.Mailer
	logs   *notifications.LogRepository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewNotificationProcessor creates a notification email processor.
func NewNotificationProcessor(m *mailer.Mailer, logs *notifications.LogRepository, q *queue.Queue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{mailer: m, logs: logs, queue: q, logger: logger}
}

// Process executes one notification job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeDecisionEmail:
		return p.processDecision(ctx, job)
	case queue.JobTypeSubmissionEmail:
		return p.processSubmission(ctx, job)
	case queue.JobTypeWelcomeEmail:
		return p.processWelcome(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *NotificationProcessor) processDecision(ctx context.Context, job *queue.Job) error {
	var payload queue.DecisionEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject, body := renderDecision(payload)
	if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
		p.recordFailed(ctx, payload.OrganizationID, &payload.LeaveRequestID, "decision", payload.RecipientEmail, subject, err)
		return fmt.Errorf("send decision email: %w", err)
	}
	p.recordSent(ctx, payload.OrganizationID, &payload.LeaveRequestID, "decision", payload.RecipientEmail, subject)
	return nil
}

func (p *NotificationProcessor) processSubmission(ctx context.Context, job *queue.Job) error {
	var payload queue.SubmissionEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject, body := renderSubmission(payload)
	if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
		p.recordFailed(ctx, payload.OrganizationID, &payload.LeaveRequestID, "submission", payload.RecipientEmail, subject, err)
		return fmt.Errorf("send submission email: %w", err)
	}
	p.recordSent(ctx, payload.OrganizationID, &payload.LeaveRequestID, "submission", payload.RecipientEmail, subject)
	return nil
}

func (p *NotificationProcessor) processWelcome(ctx context.Context, job *queue.Job) error {
	var payload queue.WelcomeEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject, body := renderWelcome(payload)
	if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
		p.recordFailed(ctx, payload.OrganizationID, nil, "welcome", payload.RecipientEmail, subject, err)
		return fmt.Errorf("send welcome email: %w", err)
	}
	p.recordSent(ctx, payload.OrganizationID, nil, "welcome", payload.RecipientEmail, subject)
	return nil
}

func (p *NotificationProcessor) recordSent(ctx context.Context, orgID uuid.UUID, leaveRequestID *uuid.UUID, emailType, recipient, subject string) {
	if p.logs == nil {
		return
	}
	if err := p.logs.RecordSent(ctx, orgID, leaveRequestID, emailType, recipient, subject); err != nil {
		p.logger.Warn("record sent notification failed", zap.Error(err), zap.String("recipient", recipient))
	}
}

func (p *NotificationProcessor) recordFailed(ctx context.Context, orgID uuid.UUID, leaveRequestID *uuid.UUID, emailType, recipient, subject string, sendErr error) {
	if p.logs == nil {
		return
	}
	if err := p.logs.RecordFailed(ctx, orgID, leaveRequestID, emailType, recipient, subject, sendErr.Error()); err != nil {
		p.logger.Warn("record failed notification failed", zap.Error(err), zap.String("recipient", recipient))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
