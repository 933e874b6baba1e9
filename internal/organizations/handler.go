package organizations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/authz"
	"github.com/leavedesk/backend/internal/middleware"
	"github.com/leavedesk/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, service *Service, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

// RegisterRequest is the body for POST /organizations/register. Fields are
// validated by the service so each missing field gets its own message.
type RegisterRequest struct {
	OrganizationName string `json:"organization_name"`
	AdminName        string `json:"admin_name"`
	AdminEmail       string `json:"admin_email"`
	Password         string `json:"password"`
}

// SheetLinkRequest is the body for PUT /organizations/sheet.
type SheetLinkRequest struct {
	SheetID        string `json:"sheet_id"`
	OrganizationID string `json:"organization_id"`
}

// Register handles POST /organizations/register (public). Creates the tenant
// and its first admin.
func (h *Handler) Register(c *gin.Context) {
	var body RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	result, denial := h.service.Register(c.Request.Context(), RegisterInput{
		OrganizationName: body.OrganizationName,
		AdminName:        body.AdminName,
		AdminEmail:       body.AdminEmail,
		Password:         body.Password,
	})
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	response.OK(c, gin.H{"organization": result})
}

// LinkSheet handles PUT /organizations/sheet. Runs the full guard chain:
// authenticated, admin role, owns the target organization, required fields.
// The order guarantees 401 before any 403, and that a non-admin never learns
// whether the organization ID was valid.
func (h *Handler) LinkSheet(c *gin.Context) {
	var body SheetLinkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	userID, denial := authz.CheckAuthentication(middleware.CurrentUser(c))
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	profile := middleware.CurrentProfile(c)
	if denial := authz.CheckAdminRole(profile); denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	if denial := authz.RequireField(body.OrganizationID, "Organization ID"); denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	orgID, err := uuid.Parse(body.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if denial := authz.CheckOrganizationOwnership(profile.OrganizationID, orgID); denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	if denial := authz.RequireField(body.SheetID, "Sheet ID"); denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}

	if err := h.repo.SetGoogleSheet(c.Request.Context(), orgID, body.SheetID); err != nil {
		h.logger.Error("link sheet", zap.Error(err),
			zap.String("organization_id", orgID.String()), zap.String("user_id", userID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, gin.H{"organization_id": orgID, "sheet_id": body.SheetID})
}

// GetMine handles GET /organizations/me. Returns the caller's organization.
func (h *Handler) GetMine(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil || profile.OrganizationID == nil {
		response.NotFound(c, "no organization assigned")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), *profile.OrganizationID)
	if err != nil {
		h.logger.Error("load organization", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, org)
}
