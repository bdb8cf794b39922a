package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/application"
	"storefront/pkg/helpers"
	"storefront/pkg/response"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "userName"
	CtxEmailKey    = "userEmail"
	CtxIsAdminKey  = "isAdmin"
)

// IdentityResolver maps a verified user id to a full caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (*application.Identity, error)
}

// Auth validates the bearer token on protected routes and resolves the
// caller. It establishes who is calling and nothing more; it performs no
// role checks.
func Auth(jwt *helpers.JWTManager, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error[any](c, http.StatusUnauthorized, "missing or invalid authorization header", nil)
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := jwt.Parse(tokenStr)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			// a valid token for a missing user is an auth failure; a
			// failing identity store is not the caller's fault
			if errors.Is(err, application.ErrUserNotFound) {
				response.Error[any](c, http.StatusUnauthorized, "unknown user", nil)
			} else {
				response.Error[any](c, http.StatusInternalServerError, "identity resolution failed", nil)
			}
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, id.ID)
		c.Set(CtxUsernameKey, id.Username)
		c.Set(CtxEmailKey, id.Email)
		c.Set(CtxIsAdminKey, id.IsAdmin)
		c.Next()
	}
}
