package organizations

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/queue"
)

type fakeOrgStore struct {
	rows      map[string]uuid.UUID // slug -> id
	createErr error
	// failCreates makes the first N Create calls fail with ErrSlugTaken even
	// when the probe said the slug was free, simulating a lost race.
	failCreates int
	deleted     []uuid.UUID
}

func newFakeOrgStore() *fakeOrgStore {
	return &fakeOrgStore{rows: make(map[string]uuid.UUID)}
}

func (f *fakeOrgStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, ok := f.rows[slug]
	return ok, nil
}

func (f *fakeOrgStore) Create(ctx context.Context, org *models.Organization) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.failCreates > 0 {
		f.failCreates--
		return ErrSlugTaken
	}
	if _, ok := f.rows[org.Slug]; ok {
		return ErrSlugTaken
	}
	org.ID = uuid.New()
	f.rows[org.Slug] = org.ID
	return nil
}

func (f *fakeOrgStore) Delete(ctx context.Context, id uuid.UUID) error {
	for slug, rowID := range f.rows {
		if rowID == id {
			delete(f.rows, slug)
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeIdentityStore struct {
	createErr  error
	profileErr error
	created    []string // emails
	profiles   map[uuid.UUID]uuid.UUID
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{profiles: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeIdentityStore) CreateUser(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, email)
	return &models.User{ID: uuid.New(), Email: email, FullName: fullName}, nil
}

func (f *fakeIdentityStore) UpdateProfile(ctx context.Context, userID uuid.UUID, role models.Role, orgID uuid.UUID) error {
	if f.profileErr != nil {
		return f.profileErr
	}
	f.profiles[userID] = orgID
	return nil
}

type fakeRecipientStore struct {
	err      error
	inserted []string
}

func (f *fakeRecipientStore) Insert(ctx context.Context, orgID uuid.UUID, email, name string) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, email)
	return nil
}

type fakeWelcomeSender struct {
	err      error
	payloads []queue.WelcomeEmailPayload
}

func (f *fakeWelcomeSender) EnqueueWelcomeEmail(ctx context.Context, payload queue.WelcomeEmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func validInput() RegisterInput {
	return RegisterInput{
		OrganizationName: "Acme Clinic",
		AdminName:        "Pat Jones",
		AdminEmail:       "pat@acme.example",
		Password:         "s3cret-pass",
	}
}

func TestRegisterSuccess(t *testing.T) {
	orgs := newFakeOrgStore()
	identities := newFakeIdentityStore()
	recipients := &fakeRecipientStore{}
	welcome := &fakeWelcomeSender{}
	svc := NewService(orgs, identities, recipients, welcome, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	require.Nil(t, denial)
	require.NotNil(t, result)
	assert.Equal(t, "Acme Clinic", result.Name)
	assert.Equal(t, "acme-clinic", result.Slug)
	assert.NotEqual(t, uuid.Nil, result.OrganizationID)

	// admin identity created and bound to the new tenant
	require.Len(t, identities.created, 1)
	assert.Equal(t, "pat@acme.example", identities.created[0])
	require.Len(t, identities.profiles, 1)
	for _, orgID := range identities.profiles {
		assert.Equal(t, result.OrganizationID, orgID)
	}

	// admin becomes the first notification recipient and gets the welcome email
	assert.Equal(t, []string{"pat@acme.example"}, recipients.inserted)
	require.Len(t, welcome.payloads, 1)
	assert.Equal(t, "acme-clinic", welcome.payloads[0].Slug)
	assert.Empty(t, orgs.deleted)
}

func TestRegisterSlugSuffixWhenTaken(t *testing.T) {
	orgs := newFakeOrgStore()
	orgs.rows["acme-clinic"] = uuid.New()
	svc := NewService(orgs, newFakeIdentityStore(), nil, nil, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	require.Nil(t, denial)
	assert.Equal(t, "acme-clinic-1", result.Slug)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeOrgStore(), newFakeIdentityStore(), nil, nil, zap.NewNop())

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		message string
	}{
		{"missing organization name", func(in *RegisterInput) { in.OrganizationName = "" }, "Organization name is required"},
		{"missing admin name", func(in *RegisterInput) { in.AdminName = "  " }, "Admin name is required"},
		{"missing admin email", func(in *RegisterInput) { in.AdminEmail = "" }, "Admin email is required"},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "Password is required"},
		{"weak password", func(in *RegisterInput) { in.Password = "abc" }, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			result, denial := svc.Register(context.Background(), in)
			assert.Nil(t, result)
			require.NotNil(t, denial)
			assert.Equal(t, http.StatusBadRequest, denial.Status)
			assert.Equal(t, tt.message, denial.Message)
		})
	}
}

func TestRegisterRollbackOnIdentityFailure(t *testing.T) {
	orgs := newFakeOrgStore()
	identities := newFakeIdentityStore()
	identities.createErr = errors.New("identity backend down")
	recipients := &fakeRecipientStore{}
	welcome := &fakeWelcomeSender{}
	svc := NewService(orgs, identities, recipients, welcome, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	assert.Nil(t, result)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusInternalServerError, denial.Status)
	assert.Equal(t, "Internal server error", denial.Message)

	// the compensating delete ran and freed the slug
	require.Len(t, orgs.deleted, 1)
	taken, _ := orgs.SlugExists(context.Background(), "acme-clinic")
	assert.False(t, taken)

	// no downstream side effects after the rollback
	assert.Empty(t, recipients.inserted)
	assert.Empty(t, welcome.payloads)
}

func TestRegisterRollbackFreesSlugForRetry(t *testing.T) {
	orgs := newFakeOrgStore()
	identities := newFakeIdentityStore()
	identities.createErr = errors.New("transient")
	svc := NewService(orgs, identities, nil, nil, zap.NewNop())

	_, denial := svc.Register(context.Background(), validInput())
	require.NotNil(t, denial)

	// same name registers cleanly afterwards, with the original slug
	identities.createErr = nil
	result, denial := svc.Register(context.Background(), validInput())
	require.Nil(t, denial)
	assert.Equal(t, "acme-clinic", result.Slug)
}

func TestRegisterBestEffortStepsDoNotFail(t *testing.T) {
	orgs := newFakeOrgStore()
	identities := newFakeIdentityStore()
	identities.profileErr = errors.New("profile write failed")
	recipients := &fakeRecipientStore{err: errors.New("recipient write failed")}
	welcome := &fakeWelcomeSender{err: errors.New("queue down")}
	svc := NewService(orgs, identities, recipients, welcome, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	require.Nil(t, denial)
	require.NotNil(t, result)
	assert.Empty(t, orgs.deleted)
}

func TestRegisterRetriesOnceOnSlugRace(t *testing.T) {
	orgs := newFakeOrgStore()
	orgs.failCreates = 1
	svc := NewService(orgs, newFakeIdentityStore(), nil, nil, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	require.Nil(t, denial)
	require.NotNil(t, result)
}

func TestRegisterConflictAfterRetryExhausted(t *testing.T) {
	orgs := newFakeOrgStore()
	orgs.failCreates = 2
	svc := NewService(orgs, newFakeIdentityStore(), nil, nil, zap.NewNop())

	result, denial := svc.Register(context.Background(), validInput())
	assert.Nil(t, result)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusConflict, denial.Status)
	assert.Equal(t, "An organization with this name already exists", denial.Message)
}
