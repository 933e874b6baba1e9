package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/response"
	"github.com/leavedesk/backend/pkg/utils"
)

// OrgResolver looks up an organization by slug for staff signup.
type OrgResolver interface {
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
}

// RegisterRequest is the body for POST /auth/register (staff signup into an
// existing organization). Organization admins are created through
// POST /organizations/register instead.
type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	FullName         string `json:"full_name" binding:"required"`
	OrganizationSlug string `json:"organization_slug" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token   string            `json:"token"`
	User    models.UserPublic `json:"user"`
	Profile *models.Profile   `json:"profile,omitempty"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	orgs   OrgResolver
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, orgs OrgResolver, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register. Creates a staff account bound to an
// existing organization identified by slug.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	org, err := h.orgs.GetBySlug(c.Request.Context(), req.OrganizationSlug)
	if err != nil || org == nil {
		response.NotFound(c, "organization not found")
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.CreateUser(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	if err := h.repo.UpdateProfile(c.Request.Context(), user.ID, models.RoleStaff, org.ID); err != nil {
		h.logger.Error("assign organization", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to assign organization")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(models.RoleStaff))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	profile, _ := h.repo.GetProfile(c.Request.Context(), user.ID)
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic(), Profile: profile})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	profile, err := h.repo.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("load profile", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to load profile")
		return
	}

	role := string(models.RoleStaff)
	if profile != nil {
		role = string(profile.Role)
	}
	token, err := h.jwt.Generate(user.ID, user.Email, role)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic(), Profile: profile}})
}
