package leaverequests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/authz"
	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/internal/notifications"
)

// RequestStore is the persistence surface of the state machine. The pgx
// Repository implements it; tests use an in-memory fake.
type RequestStore interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error)
	Transition(ctx context.Context, id uuid.UUID, status models.LeaveStatus, reviewedBy uuid.UUID, reviewedAt time.Time, adminNotes *string) (*models.LeaveRequest, error)
}

// SubmitterResolver looks up the submitter identity for notifications.
type SubmitterResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// EventPublisher pushes lifecycle events to connected dashboards. Optional.
type EventPublisher interface {
	LeaveRequestSubmitted(req *models.LeaveRequest)
	LeaveRequestDecided(req *models.LeaveRequest)
}

// SubmitInput is a staff leave submission.
type SubmitInput struct {
	LeaveTypeID uuid.UUID
	PayPeriodID uuid.UUID
}

// Service implements the leave request lifecycle: creation in pending, and the
// single admin-gated transition to approved or denied. Notification dispatch
// and dashboard events are best-effort side effects that never undo a
// committed transition.
type Service struct {
	store      RequestStore
	submitters SubmitterResolver
	dispatcher notifications.Dispatcher
	events     EventPublisher
	logger     *zap.Logger
}

// NewService creates the lifecycle service. dispatcher and events may be nil.
func NewService(store RequestStore, submitters SubmitterResolver, dispatcher notifications.Dispatcher, events EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, submitters: submitters, dispatcher: dispatcher, events: events, logger: logger}
}

// Submit creates a pending request for the caller. The organization is always
// taken from the caller's profile, never from the request body, so a request
// can only ever belong to its creator's tenant.
func (s *Service) Submit(ctx context.Context, callerID *uuid.UUID, profile *models.Profile, in SubmitInput) (*models.LeaveRequest, *authz.Denial) {
	userID, denial := authz.CheckAuthentication(callerID)
	if denial != nil {
		return nil, denial
	}
	if profile == nil || profile.OrganizationID == nil {
		return nil, &authz.Denial{Kind: authz.KindOrgMismatch, Status: 403, Message: "Forbidden - No organization assigned"}
	}
	if in.LeaveTypeID == uuid.Nil {
		return nil, authz.MissingField("Leave type")
	}
	if in.PayPeriodID == uuid.Nil {
		return nil, authz.MissingField("Pay period")
	}

	req := &models.LeaveRequest{
		UserID:         userID,
		OrganizationID: *profile.OrganizationID,
		LeaveTypeID:    in.LeaveTypeID,
		PayPeriodID:    in.PayPeriodID,
	}
	if err := s.store.Create(ctx, req); err != nil {
		s.logger.Error("create leave request", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, authz.Internal()
	}

	s.notifySubmitted(ctx, req)
	return req, nil
}

// Approve transitions a pending request to approved.
func (s *Service) Approve(ctx context.Context, callerID *uuid.UUID, profile *models.Profile, requestID uuid.UUID) (*models.LeaveRequest, *authz.Denial) {
	return s.decide(ctx, callerID, profile, requestID, models.LeaveApproved, nil)
}

// Deny transitions a pending request to denied, optionally recording admin notes.
func (s *Service) Deny(ctx context.Context, callerID *uuid.UUID, profile *models.Profile, requestID uuid.UUID, notes string) (*models.LeaveRequest, *authz.Denial) {
	var adminNotes *string
	if notes != "" {
		adminNotes = &notes
	}
	return s.decide(ctx, callerID, profile, requestID, models.LeaveDenied, adminNotes)
}

// decide runs guard steps in order: authentication, admin role, organization
// ownership, then the pending precondition. The persistence write is
// conditional on the row still being pending, which makes the transition
// happen at most once under concurrent reviewers.
func (s *Service) decide(ctx context.Context, callerID *uuid.UUID, profile *models.Profile, requestID uuid.UUID, target models.LeaveStatus, adminNotes *string) (*models.LeaveRequest, *authz.Denial) {
	reviewerID, denial := authz.CheckAuthentication(callerID)
	if denial != nil {
		return nil, denial
	}
	if denial := authz.CheckAdminRole(profile); denial != nil {
		return nil, denial
	}

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		s.logger.Error("load leave request", zap.Error(err), zap.String("leave_request_id", requestID.String()))
		return nil, authz.Internal()
	}
	if req == nil {
		return nil, authz.NotFound("Leave request not found")
	}
	if denial := authz.CheckOrganizationOwnership(profile.OrganizationID, req.OrganizationID); denial != nil {
		return nil, denial
	}
	if req.Status.Terminal() {
		return nil, authz.AlreadyReviewed()
	}

	updated, err := s.store.Transition(ctx, requestID, target, reviewerID, time.Now(), adminNotes)
	if err != nil {
		s.logger.Error("transition leave request", zap.Error(err), zap.String("leave_request_id", requestID.String()))
		return nil, authz.Internal()
	}
	if updated == nil {
		// Lost the race: another reviewer transitioned it between the read
		// and the conditional write.
		return nil, authz.AlreadyReviewed()
	}

	s.notifyDecided(ctx, updated)
	return updated, nil
}

// notifySubmitted fans out the submission side effects. Failures are logged
// only; the request is already persisted.
func (s *Service) notifySubmitted(ctx context.Context, req *models.LeaveRequest) {
	submitterName := s.submitterName(ctx, req.UserID)
	if s.dispatcher != nil {
		err := s.dispatcher.DispatchSubmission(ctx, notifications.SubmissionEvent{
			LeaveRequestID: req.ID,
			OrganizationID: req.OrganizationID,
			SubmitterName:  submitterName,
		})
		if err != nil {
			s.logger.Warn("dispatch submission notification", zap.Error(err), zap.String("leave_request_id", req.ID.String()))
		}
	}
	if s.events != nil {
		s.events.LeaveRequestSubmitted(req)
	}
}

// notifyDecided dispatches exactly one outcome notification to the submitter.
// Dispatch failure never reverts the transition; delivery retries live in the
// queue, not here.
func (s *Service) notifyDecided(ctx context.Context, req *models.LeaveRequest) {
	if s.dispatcher != nil {
		submitter, err := s.submitters.GetByID(ctx, req.UserID)
		if err != nil || submitter == nil {
			s.logger.Error("resolve submitter for notification", zap.Error(err), zap.String("leave_request_id", req.ID.String()))
		} else {
			notes := ""
			if req.Status == models.LeaveDenied && req.AdminNotes != nil {
				notes = *req.AdminNotes
			}
			err := s.dispatcher.DispatchDecision(ctx, notifications.DecisionEvent{
				LeaveRequestID: req.ID,
				OrganizationID: req.OrganizationID,
				SubmitterEmail: submitter.Email,
				SubmitterName:  submitter.FullName,
				Outcome:        req.Status,
				AdminNotes:     notes,
			})
			if err != nil {
				s.logger.Warn("dispatch decision notification", zap.Error(err), zap.String("leave_request_id", req.ID.String()))
			}
		}
	}
	if s.events != nil {
		s.events.LeaveRequestDecided(req)
	}
}

func (s *Service) submitterName(ctx context.Context, userID uuid.UUID) string {
	if s.submitters == nil {
		return ""
	}
	u, err := s.submitters.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ""
	}
	return u.FullName
}
