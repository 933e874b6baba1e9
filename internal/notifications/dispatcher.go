// Package notifications defines the dispatch contract consumed by the leave
// request state machine, the recipient list, and the delivery log. Delivery
// itself happens in the background worker; everything here is best-effort from
// the state machine's point of view.
package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/queue"
)

// DecisionEvent describes a reviewed leave request for the submitter's
// outcome notification.
type DecisionEvent struct {
	LeaveRequestID uuid.UUID
	OrganizationID uuid.UUID
	SubmitterEmail string
	SubmitterName  string
	Outcome        models.LeaveStatus
	AdminNotes     string
	LeaveTypeName  string
}

// SubmissionEvent describes a newly submitted request for the organization's
// notification recipients.
type SubmissionEvent struct {
	LeaveRequestID uuid.UUID
	OrganizationID uuid.UUID
	SubmitterName  string
	LeaveTypeName  string
}

// Dispatcher consumes lifecycle events and arranges message delivery.
type Dispatcher interface {
	DispatchDecision(ctx context.Context, ev DecisionEvent) error
	DispatchSubmission(ctx context.Context, ev SubmissionEvent) error
}

// RecipientLister reads the active recipient list for an organization.
type RecipientLister interface {
	ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.NotificationRecipient, error)
}

// QueueDispatcher implements Dispatcher by enqueueing email jobs on the Redis
// queue; the worker delivers and records them. Failure here never affects the
// state transition that produced the event.
type QueueDispatcher struct {
	queue      *queue.Queue
	recipients RecipientLister
	logger     *zap.Logger
}

// NewQueueDispatcher creates the production dispatcher.
func NewQueueDispatcher(q *queue.Queue, recipients RecipientLister, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{queue: q, recipients: recipients, logger: logger}
}

// DispatchDecision enqueues exactly one outcome email to the submitter.
func (d *QueueDispatcher) DispatchDecision(ctx context.Context, ev DecisionEvent) error {
	err := d.queue.EnqueueDecisionEmail(ctx, queue.DecisionEmailPayload{
		LeaveRequestID: ev.LeaveRequestID,
		OrganizationID: ev.OrganizationID,
		RecipientEmail: ev.SubmitterEmail,
		RecipientName:  ev.SubmitterName,
		Outcome:        string(ev.Outcome),
		AdminNotes:     ev.AdminNotes,
		LeaveTypeName:  ev.LeaveTypeName,
	})
	if err != nil {
		return fmt.Errorf("enqueue decision email: %w", err)
	}
	return nil
}

// DispatchSubmission fans a "new request" email out to every active recipient
// of the organization.
func (d *QueueDispatcher) DispatchSubmission(ctx context.Context, ev SubmissionEvent) error {
	recipients, err := d.recipients.ListActiveByOrganization(ctx, ev.OrganizationID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	for _, r := range recipients {
		err := d.queue.EnqueueSubmissionEmail(ctx, queue.SubmissionEmailPayload{
			LeaveRequestID: ev.LeaveRequestID,
			OrganizationID: ev.OrganizationID,
			RecipientEmail: r.Email,
			RecipientName:  r.Name,
			SubmitterName:  ev.SubmitterName,
			LeaveTypeName:  ev.LeaveTypeName,
		})
		if err != nil {
			d.logger.Warn("enqueue submission email", zap.Error(err),
				zap.String("recipient", r.Email), zap.String("leave_request_id", ev.LeaveRequestID.String()))
		}
	}
	return nil
}
