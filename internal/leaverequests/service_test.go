package leaverequests

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/internal/notifications"
)

type fakeRequestStore struct {
	rows      map[uuid.UUID]*models.LeaveRequest
	createErr error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{rows: make(map[uuid.UUID]*models.LeaveRequest)}
}

func (f *fakeRequestStore) Create(ctx context.Context, req *models.LeaveRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = uuid.New()
	req.Status = models.LeavePending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	row := *req
	f.rows[req.ID] = &row
	return nil
}

func (f *fakeRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copy := *row
	return &copy, nil
}

// Transition mirrors the conditional UPDATE: it only succeeds while the row is
// still pending, and returns nil when another reviewer got there first.
func (f *fakeRequestStore) Transition(ctx context.Context, id uuid.UUID, status models.LeaveStatus, reviewedBy uuid.UUID, reviewedAt time.Time, adminNotes *string) (*models.LeaveRequest, error) {
	row, ok := f.rows[id]
	if !ok || row.Status != models.LeavePending {
		return nil, nil
	}
	row.Status = status
	row.ReviewedBy = &reviewedBy
	row.ReviewedAt = &reviewedAt
	row.AdminNotes = adminNotes
	row.UpdatedAt = reviewedAt
	copy := *row
	return &copy, nil
}

type fakeSubmitters struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeSubmitters) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

type fakeDispatcher struct {
	decisionErr error
	decisions   []notifications.DecisionEvent
	submissions []notifications.SubmissionEvent
}

func (f *fakeDispatcher) DispatchDecision(ctx context.Context, ev notifications.DecisionEvent) error {
	if f.decisionErr != nil {
		return f.decisionErr
	}
	f.decisions = append(f.decisions, ev)
	return nil
}

func (f *fakeDispatcher) DispatchSubmission(ctx context.Context, ev notifications.SubmissionEvent) error {
	f.submissions = append(f.submissions, ev)
	return nil
}

type fakeEvents struct {
	submitted, decided int
}

func (f *fakeEvents) LeaveRequestSubmitted(req *models.LeaveRequest) { f.submitted++ }
func (f *fakeEvents) LeaveRequestDecided(req *models.LeaveRequest)  { f.decided++ }

type fixture struct {
	store      *fakeRequestStore
	dispatcher *fakeDispatcher
	events     *fakeEvents
	svc        *Service

	orgID     uuid.UUID
	staffID   uuid.UUID
	adminID   uuid.UUID
	staff     *models.Profile
	admin     *models.Profile
	submitted *models.LeaveRequest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      newFakeRequestStore(),
		dispatcher: &fakeDispatcher{},
		events:     &fakeEvents{},
		orgID:      uuid.New(),
		staffID:    uuid.New(),
		adminID:    uuid.New(),
	}
	f.staff = &models.Profile{UserID: f.staffID, Role: models.RoleStaff, OrganizationID: &f.orgID}
	f.admin = &models.Profile{UserID: f.adminID, Role: models.RoleAdmin, OrganizationID: &f.orgID}
	submitters := &fakeSubmitters{users: map[uuid.UUID]*models.User{
		f.staffID: {ID: f.staffID, Email: "staff@acme.example", FullName: "Sam Staff"},
	}}
	f.svc = NewService(f.store, submitters, f.dispatcher, f.events, zap.NewNop())
	return f
}

func (f *fixture) submit(t *testing.T) *models.LeaveRequest {
	t.Helper()
	req, denial := f.svc.Submit(context.Background(), &f.staffID, f.staff, SubmitInput{
		LeaveTypeID: uuid.New(),
		PayPeriodID: uuid.New(),
	})
	require.Nil(t, denial)
	require.NotNil(t, req)
	f.submitted = req
	return req
}

func TestSubmitCreatesPendingInCallerOrg(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	assert.Equal(t, models.LeavePending, req.Status)
	assert.Equal(t, f.staffID, req.UserID)
	// tenant always comes from the profile, never from the input
	assert.Equal(t, f.orgID, req.OrganizationID)
	assert.Nil(t, req.ReviewedBy)

	require.Len(t, f.dispatcher.submissions, 1)
	assert.Equal(t, "Sam Staff", f.dispatcher.submissions[0].SubmitterName)
	assert.Equal(t, 1, f.events.submitted)
}

func TestSubmitGuards(t *testing.T) {
	f := newFixture(t)

	_, denial := f.svc.Submit(context.Background(), nil, f.staff, SubmitInput{LeaveTypeID: uuid.New(), PayPeriodID: uuid.New()})
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)

	noOrg := &models.Profile{UserID: f.staffID, Role: models.RoleStaff}
	_, denial = f.svc.Submit(context.Background(), &f.staffID, noOrg, SubmitInput{LeaveTypeID: uuid.New(), PayPeriodID: uuid.New()})
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)

	_, denial = f.svc.Submit(context.Background(), &f.staffID, f.staff, SubmitInput{PayPeriodID: uuid.New()})
	require.NotNil(t, denial)
	assert.Equal(t, "Leave type is required", denial.Message)

	_, denial = f.svc.Submit(context.Background(), &f.staffID, f.staff, SubmitInput{LeaveTypeID: uuid.New()})
	require.NotNil(t, denial)
	assert.Equal(t, "Pay period is required", denial.Message)
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	updated, denial := f.svc.Approve(context.Background(), &f.adminID, f.admin, req.ID)
	require.Nil(t, denial)
	assert.Equal(t, models.LeaveApproved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, f.adminID, *updated.ReviewedBy)
	assert.NotNil(t, updated.ReviewedAt)
	assert.Nil(t, updated.AdminNotes)

	require.Len(t, f.dispatcher.decisions, 1)
	ev := f.dispatcher.decisions[0]
	assert.Equal(t, "staff@acme.example", ev.SubmitterEmail)
	assert.Equal(t, models.LeaveApproved, ev.Outcome)
	assert.Empty(t, ev.AdminNotes)
	assert.Equal(t, 1, f.events.decided)
}

func TestDenyCarriesNotes(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	updated, denial := f.svc.Deny(context.Background(), &f.adminID, f.admin, req.ID, "blackout period")
	require.Nil(t, denial)
	assert.Equal(t, models.LeaveDenied, updated.Status)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, "blackout period", *updated.AdminNotes)

	require.Len(t, f.dispatcher.decisions, 1)
	assert.Equal(t, "blackout period", f.dispatcher.decisions[0].AdminNotes)
}

func TestDecideGuardOrdering(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	// unauthenticated before anything else
	_, denial := f.svc.Approve(context.Background(), nil, f.admin, req.ID)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)

	// staff cannot decide, even in their own org
	_, denial = f.svc.Approve(context.Background(), &f.staffID, f.staff, req.ID)
	require.NotNil(t, denial)
	assert.Equal(t, "Forbidden - Admin access required", denial.Message)

	// admin of another tenant sees a mismatch, not the request contents
	otherOrg := uuid.New()
	outsider := &models.Profile{UserID: uuid.New(), Role: models.RoleAdmin, OrganizationID: &otherOrg}
	_, denial = f.svc.Approve(context.Background(), &outsider.UserID, outsider, req.ID)
	require.NotNil(t, denial)
	assert.Equal(t, "Forbidden - Organization mismatch", denial.Message)

	// nothing transitioned
	row, _ := f.store.GetByID(context.Background(), req.ID)
	assert.Equal(t, models.LeavePending, row.Status)
}

func TestDecideNotFound(t *testing.T) {
	f := newFixture(t)
	_, denial := f.svc.Approve(context.Background(), &f.adminID, f.admin, uuid.New())
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusNotFound, denial.Status)
	assert.Equal(t, "Leave request not found", denial.Message)
}

func TestDecideAlreadyReviewed(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	_, denial := f.svc.Approve(context.Background(), &f.adminID, f.admin, req.ID)
	require.Nil(t, denial)

	_, denial = f.svc.Deny(context.Background(), &f.adminID, f.admin, req.ID, "")
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusConflict, denial.Status)
	assert.Equal(t, "Leave request has already been reviewed", denial.Message)

	// the original decision stands
	row, _ := f.store.GetByID(context.Background(), req.ID)
	assert.Equal(t, models.LeaveApproved, row.Status)
	// one decision, one notification
	assert.Len(t, f.dispatcher.decisions, 1)
	assert.Equal(t, 1, f.events.decided)
}

func TestDecideLostRaceYieldsConflict(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	// another reviewer wins between the read and the conditional write
	_, err := f.store.Transition(context.Background(), req.ID, models.LeaveDenied, uuid.New(), time.Now(), nil)
	require.NoError(t, err)

	_, denial := f.svc.Approve(context.Background(), &f.adminID, f.admin, req.ID)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusConflict, denial.Status)
}

func TestDispatchFailureDoesNotRevertTransition(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)
	f.dispatcher.decisionErr = errors.New("queue unavailable")

	updated, denial := f.svc.Approve(context.Background(), &f.adminID, f.admin, req.ID)
	require.Nil(t, denial)
	assert.Equal(t, models.LeaveApproved, updated.Status)

	row, _ := f.store.GetByID(context.Background(), req.ID)
	assert.Equal(t, models.LeaveApproved, row.Status)
	// the dashboard event still fires
	assert.Equal(t, 1, f.events.decided)
}
