package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leavedesk/backend/internal/auth"
	"github.com/leavedesk/backend/internal/routing"
)

// PageGuard applies the redirect decision engine to every inbound path:
// unauthenticated callers on protected pages are redirected to /login,
// authenticated callers on auth pages are redirected home. Authentication
// state is the presence of a valid JWT in the Authorization header or the
// token cookie; the engine itself handles the disabled (skip) deployment mode.
func PageGuard(engine *routing.Engine, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := engine.Decide(c.Request.URL.Path, hasValidToken(c, jwtService))
		if !decision.None() {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasValidToken(c *gin.Context, jwtService *auth.JWTService) bool {
	token := ""
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		if cookie, err := c.Cookie("token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return false
	}
	_, err := jwtService.Validate(token)
	return err == nil
}
