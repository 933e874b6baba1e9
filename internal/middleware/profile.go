package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/response"
)

// ProfileStore loads the authorization profile for a user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// LoadProfile resolves the caller's profile once per request and stores it in
// context. Call after JWT. A missing profile is not an error here; the guard
// chain rejects it where admin access is required.
func LoadProfile(store ProfileStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUser(c)
		if userID == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		profile, err := store.GetProfile(c.Request.Context(), *userID)
		if err != nil {
			logger.Error("resolve profile", zap.Error(err), zap.String("user_id", userID.String()))
			response.Internal(c, "Internal server error")
			c.Abort()
			return
		}
		if profile != nil {
			c.Set(ContextProfile, profile)
		}
		c.Next()
	}
}
