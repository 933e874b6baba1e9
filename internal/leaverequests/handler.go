package leaverequests

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/authz"
	"github.com/leavedesk/backend/internal/middleware"
	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/response"
)

// Handler handles leave request HTTP endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *zap.Logger
}

// NewHandler creates a leave requests handler.
func NewHandler(service *Service, repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{service: service, repo: repo, logger: logger}
}

// SubmitRequest is the body for POST /leave-requests.
type SubmitRequest struct {
	LeaveTypeID uuid.UUID `json:"leave_type_id" binding:"required"`
	PayPeriodID uuid.UUID `json:"pay_period_id" binding:"required"`
}

// DenyRequest is the body for PATCH /leave-requests/:id/deny.
type DenyRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// Submit handles POST /leave-requests. Any authenticated member of an
// organization can submit; the request is scoped to their own tenant.
func (h *Handler) Submit(c *gin.Context) {
	var body SubmitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "leave_type_id and pay_period_id required")
		return
	}
	req, denial := h.service.Submit(c.Request.Context(), middleware.CurrentUser(c), middleware.CurrentProfile(c), SubmitInput{
		LeaveTypeID: body.LeaveTypeID,
		PayPeriodID: body.PayPeriodID,
	})
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	response.Created(c, req)
}

// ListMine handles GET /leave-requests. Returns the caller's own requests.
func (h *Handler) ListMine(c *gin.Context) {
	userID := middleware.CurrentUser(c)
	if userID == nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	list, err := h.repo.ListByUser(c.Request.Context(), *userID)
	if err != nil {
		h.logger.Error("list own leave requests", zap.Error(err))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// ListByOrganization handles GET /organizations/:id/leave-requests. Admin of
// the target organization only; optional ?status= filter.
func (h *Handler) ListByOrganization(c *gin.Context) {
	orgID, denial := h.authorizeOrg(c)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}

	status := models.LeaveStatus(c.Query("status"))
	switch status {
	case "", models.LeavePending, models.LeaveApproved, models.LeaveDenied:
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}

	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID, status)
	if err != nil {
		h.logger.Error("list organization leave requests", zap.Error(err), zap.String("organization_id", orgID.String()))
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// Approve handles PATCH /leave-requests/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid leave request id")
		return
	}
	req, denial := h.service.Approve(c.Request.Context(), middleware.CurrentUser(c), middleware.CurrentProfile(c), requestID)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	response.OK(c, req)
}

// Deny handles PATCH /leave-requests/:id/deny.
func (h *Handler) Deny(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid leave request id")
		return
	}
	var body DenyRequest
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "invalid request body")
		return
	}
	req, denial := h.service.Deny(c.Request.Context(), middleware.CurrentUser(c), middleware.CurrentProfile(c), requestID, body.AdminNotes)
	if denial != nil {
		response.Error(c, denial.Status, denial.Message)
		return
	}
	response.OK(c, req)
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
