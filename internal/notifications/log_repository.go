package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/backend/internal/models"
)

// LogRepository handles notification_logs persistence.
type LogRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository creates a notification log repository.
func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// RecordSent inserts a log row for a delivered message.
func (r *LogRepository) RecordSent(ctx context.Context, orgID uuid.UUID, leaveRequestID *uuid.UUID, emailType, recipient, subject string) error {
	const q = `INSERT INTO notification_logs (organization_id, leave_request_id, email_type, recipient_email, subject, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, 'sent', $6)`
	_, err := r.pool.Exec(ctx, q, orgID, leaveRequestID, emailType, recipient, subject, time.Now())
	return err
}

// RecordFailed inserts a log row for a message that could not be delivered.
func (r *LogRepository) RecordFailed(ctx context.Context, orgID uuid.UUID, leaveRequestID *uuid.UUID, emailType, recipient, subject, errMsg string) error {
	const q = `INSERT INTO notification_logs (organization_id, leave_request_id, email_type, recipient_email, subject, status, error_message)
		VALUES ($1, $2, $3, $4, $5, 'failed', $6)`
	_, err := r.pool.Exec(ctx, q, orgID, leaveRequestID, emailType, recipient, subject, errMsg)
	return err
}

// ListByOrganization returns notification logs for an organization, newest first.
func (r *LogRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.NotificationLog, error) {
	const q = `SELECT id, organization_id, leave_request_id, email_type, recipient_email,
			COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at
		FROM notification_logs
		WHERE organization_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.NotificationLog
	for rows.Next() {
		var nl models.NotificationLog
		if err := rows.Scan(&nl.ID, &nl.OrganizationID, &nl.LeaveRequestID, &nl.EmailType, &nl.RecipientEmail,
			&nl.Subject, &nl.Status, &nl.SentAt, &nl.ErrorMessage, &nl.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, nl)
	}
	return list, rows.Err()
}
