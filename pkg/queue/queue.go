package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueNotifications is the Redis list key for outbound notification jobs.
	QueueNotifications = "worker:notifications"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeDecisionEmail   JobType = "decision_email"
	JobTypeSubmissionEmail JobType = "submission_email"
	JobTypeWelcomeEmail    JobType = "welcome_email"
)

// DecisionEmailPayload is the payload for leave decision notification jobs.
type DecisionEmailPayload struct {
	LeaveRequestID uuid.UUID `json:"leave_request_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	Outcome        string    `json:"outcome"` // approved or denied
	AdminNotes     string    `json:"admin_notes,omitempty"`
	LeaveTypeName  string    `json:"leave_type_name,omitempty"`
}

// SubmissionEmailPayload is the payload for "new request submitted" emails
// sent to an organization's active notification recipients.
type SubmissionEmailPayload struct {
	LeaveRequestID uuid.UUID `json:"leave_request_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	SubmitterName  string    `json:"submitter_name"`
	LeaveTypeName  string    `json:"leave_type_name,omitempty"`
}

// WelcomeEmailPayload is the payload for the organization welcome email.
type WelcomeEmailPayload struct {
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	RecipientEmail   string    `json:"recipient_email"`
	RecipientName    string    `json:"recipient_name"`
	Slug             string    `json:"slug"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueDecisionEmail enqueues a leave decision notification job.
func (q *Queue) EnqueueDecisionEmail(ctx context.Context, payload DecisionEmailPayload) error {
	q.logger.Debug("enqueue decision email",
		zap.String("leave_request_id", payload.LeaveRequestID.String()),
		zap.String("outcome", payload.Outcome))
	return q.enqueue(ctx, JobTypeDecisionEmail, payload)
}

// EnqueueSubmissionEmail enqueues a "new request submitted" notification job.
func (q *Queue) EnqueueSubmissionEmail(ctx context.Context, payload SubmissionEmailPayload) error {
	q.logger.Debug("enqueue submission email",
		zap.String("leave_request_id", payload.LeaveRequestID.String()),
		zap.String("recipient", payload.RecipientEmail))
	return q.enqueue(ctx, JobTypeSubmissionEmail, payload)
}

// EnqueueWelcomeEmail enqueues an organization welcome email job.
func (q *Queue) EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error {
	q.logger.Debug("enqueue welcome email",
		zap.String("organization_id", payload.OrganizationID.String()))
	return q.enqueue(ctx, JobTypeWelcomeEmail, payload)
}

func (q *Queue) enqueue(ctx context.Context, jobType JobType, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueNotifications, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}

// Dequeue blocks until a job is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, 0, QueueNotifications).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, QueueNotifications, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
