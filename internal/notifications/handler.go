package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/authz"
	"github.com/leavedesk/backend/internal/middleware"
	"github.com/leavedesk/backend/pkg/response"
)

// Handler handles recipient management and the delivery log.
type Handler struct {
	recipients *RecipientRepository
	logs       *LogRepository
	logger     *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(recipients *RecipientRepository, logs *LogRepository, logger *zap.Logger) *Handler {
	return &Handler{recipients: recipients, logs: logs, logger: logger}
}

// AddRecipientRequest is the body for POST /organizations/:id/recipients.
type AddRecipientRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// SetRecipientActiveRequest is the body for PATCH /organizations/:id/recipients/:recipientId.
type SetRecipientActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListRecipients handles GET /organizations/:id/recipients.
func (h *Handler) ListRecipients(c *gin.Context) {
	orgID, denial := h.authorizeOrg(c)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	list, err := h.recipients.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list recipients", zap.Error(err), zap.String("organization_id", orgID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// AddRecipient handles POST /organizations/:id/recipients.
func (h *Handler) AddRecipient(c *gin.Context) {
	orgID, denial := h.authorizeOrg(c)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	var body AddRecipientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "valid email required")
		return
	}
	if err := h.recipients.Insert(c.Request.Context(), orgID, body.Email, body.Name); err != nil {
		h.logger.Error("add recipient", zap.Error(err), zap.String("organization_id", orgID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.Created(c, gin.H{"email": body.Email})
}

// SetRecipientActive handles PATCH /organizations/:id/recipients/:recipientId.
func (h *Handler) SetRecipientActive(c *gin.Context) {
	orgID, denial := h.authorizeOrg(c)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	recipientID, err := uuid.Parse(c.Param("recipientId"))
	if err != nil {
		response.BadRequest(c, "invalid recipient id")
		return
	}
	var body SetRecipientActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.IsActive == nil {
		response.BadRequest(c, "is_active required")
		return
	}
	found, err := h.recipients.SetActive(c.Request.Context(), orgID, recipientID, *body.IsActive)
	if err != nil {
		h.logger.Error("toggle recipient", zap.Error(err), zap.String("recipient_id", recipientID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	if !found {
		response.NotFound(c, "recipient not found")
		return
	}
	response.OK(c, gin.H{"id": recipientID, "is_active": *body.IsActive})
}

// ListLogs handles GET /organizations/:id/notifications.
func (h *Handler) ListLogs(c *gin.Context) {
	orgID, denial := h.authorizeOrg(c)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	list, err := h.logs.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list notification logs", zap.Error(err), zap.String("organization_id", orgID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// authorizeOrg runs guard steps 1-3 against the :id path parameter.
func (h *Handler) authorizeOrg(c *gin.Context) (uuid.UUID, *authz.Denial) {
	if _, denial := authz.CheckAuthentication(middleware.CurrentUser(c)); denial != nil {
		return uuid.Nil, denial
	}
	profile := middleware.CurrentProfile(c)
	if denial := authz.CheckAdminRole(profile); denial != nil {
		return uuid.Nil, denial
	}
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, authz.MissingField("Organization ID")
	}
	if denial := authz.CheckOrganizationOwnership(profile.OrganizationID, orgID); denial != nil {
		return uuid.Nil, denial
	}
	return orgID, nil
}
