package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
)

const (
	// ContextKeyUser is the Gin context key for the authenticated caller.
	ContextKeyUser = "user"
)

// RequireUserJWT validates a JWT from the Authorization header and stores
// the caller identity in the context.
func RequireUserJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyUser, model.UserCtx{
			UserID: claims.Subject,
			Roles:  claims.Roles,
		})
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// RequireUserJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetUser(c).IsAdmin() {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}

// GetUser retrieves the authenticated caller from the Gin context.
func GetUser(c *gin.Context) model.UserCtx {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return model.UserCtx{}
	}
	user, ok := val.(model.UserCtx)
	if !ok {
		return model.UserCtx{}
	}
	return user
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}
