package organizations

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/authz"
	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/queue"
	"github.com/leavedesk/backend/pkg/utils"
)

const minPasswordLen = 6

// OrganizationStore is the persistence surface the registration saga needs.
type OrganizationStore interface {
	SlugProber
	Create(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdentityStore creates and updates account identities. Backed by the auth
// repository in production.
type IdentityStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, role models.Role, orgID uuid.UUID) error
}

// RecipientStore inserts notification recipients.
type RecipientStore interface {
	Insert(ctx context.Context, orgID uuid.UUID, email, name string) error
}

// WelcomeSender enqueues the post-registration welcome email.
type WelcomeSender interface {
	EnqueueWelcomeEmail(ctx context.Context, payload queue.WelcomeEmailPayload) error
}

// RegisterInput is the organization registration request.
type RegisterInput struct {
	OrganizationName string
	AdminName        string
	AdminEmail       string
	Password         string
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	OrganizationID uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
}

// Service runs the organization registration saga: resolve a unique slug,
// create the organization, create the first admin identity, and undo the
// organization when identity creation fails so the two creations look atomic
// to the caller. Profile backfill, the recipient insert, and the welcome email
// are best-effort.
type Service struct {
	orgs       OrganizationStore
	identities IdentityStore
	recipients RecipientStore
	welcome    WelcomeSender
	logger     *zap.Logger
}

// NewService creates the registration service. recipients and welcome may be
// nil, which skips those best-effort steps.
func NewService(orgs OrganizationStore, identities IdentityStore, recipients RecipientStore, welcome WelcomeSender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orgs: orgs, identities: identities, recipients: recipients, welcome: welcome, logger: logger}
}

// Register executes the registration procedure. A non-nil denial carries the
// HTTP status and caller-visible message.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, *authz.Denial) {
	if d := s.validate(in); d != nil {
		return nil, d
	}

	org, d := s.createOrganization(ctx, in)
	if d != nil {
		return nil, d
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		s.rollback(ctx, org)
		s.logger.Error("hash password", zap.Error(err))
		return nil, authz.Internal()
	}

	admin, err := s.identities.CreateUser(ctx, in.AdminEmail, hash, in.AdminName)
	if err != nil {
		// Compensating action: the organization must not remain visible
		// without its admin.
		s.rollback(ctx, org)
		s.logger.Error("create admin identity", zap.Error(err), zap.String("slug", org.Slug))
		return nil, authz.Internal()
	}

	// Best-effort from here on: the identity exists, an operator can repair
	// the rest.
	if err := s.identities.UpdateProfile(ctx, admin.ID, models.RoleAdmin, org.ID); err != nil {
		s.logger.Error("backfill admin profile", zap.Error(err),
			zap.String("user_id", admin.ID.String()), zap.String("organization_id", org.ID.String()))
	}

	if s.recipients != nil {
		if err := s.recipients.Insert(ctx, org.ID, in.AdminEmail, in.AdminName); err != nil {
			s.logger.Warn("insert notification recipient", zap.Error(err), zap.String("organization_id", org.ID.String()))
		}
	}

	if s.welcome != nil {
		err := s.welcome.EnqueueWelcomeEmail(ctx, queue.WelcomeEmailPayload{
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			RecipientEmail:   in.AdminEmail,
			RecipientName:    in.AdminName,
			Slug:             org.Slug,
		})
		if err != nil {
			s.logger.Warn("enqueue welcome email", zap.Error(err), zap.String("organization_id", org.ID.String()))
		}
	}

	return &RegisterResult{OrganizationID: org.ID, Name: org.Name, Slug: org.Slug}, nil
}

func (s *Service) validate(in RegisterInput) *authz.Denial {
	if d := authz.RequireField(in.OrganizationName, "Organization name"); d != nil {
		return d
	}
	if d := authz.RequireField(in.AdminName, "Admin name"); d != nil {
		return d
	}
	if d := authz.RequireField(in.AdminEmail, "Admin email"); d != nil {
		return d
	}
	if d := authz.RequireField(in.Password, "Password"); d != nil {
		return d
	}
	if len(in.Password) < minPasswordLen {
		return &authz.Denial{Kind: authz.KindMissingField, Status: 400, Message: "Password must be at least 6 characters"}
	}
	return nil
}

// createOrganization resolves a slug and inserts the row. A constraint
// violation means a concurrent registration won the probe race; the probe is
// re-run once before giving up with a conflict.
func (s *Service) createOrganization(ctx context.Context, in RegisterInput) (*models.Organization, *authz.Denial) {
	base := Slugify(in.OrganizationName)
	for attempt := 0; attempt < 2; attempt++ {
		slug, err := ResolveSlug(ctx, s.orgs, base)
		if err != nil {
			s.logger.Error("resolve slug", zap.Error(err), zap.String("base", base))
			return nil, authz.Internal()
		}
		org := &models.Organization{
			Name:       strings.TrimSpace(in.OrganizationName),
			Slug:       slug,
			AdminEmail: in.AdminEmail,
		}
		err = s.orgs.Create(ctx, org)
		if err == nil {
			return org, nil
		}
		if errors.Is(err, ErrSlugTaken) {
			s.logger.Warn("slug taken between probe and insert, retrying", zap.String("slug", slug))
			continue
		}
		s.logger.Error("create organization", zap.Error(err), zap.String("slug", slug))
		return nil, authz.Internal()
	}
	return nil, authz.Conflict("An organization with this name already exists")
}

func (s *Service) rollback(ctx context.Context, org *models.Organization) {
	if err := s.orgs.Delete(ctx, org.ID); err != nil {
		// Orphan organization: needs operator cleanup, surfaced loudly.
		s.logger.Error("compensating delete failed, organization row orphaned",
			zap.Error(err), zap.String("organization_id", org.ID.String()), zap.String("slug", org.Slug))
	}
}
