package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/LautaroGarc/dardito/internal/constants"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
)

// RequireAuth resolves the caller either from a previously established
// session or from a bearer token, and stores the full user in the request
// context.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
			user, err := authService.GetUser(c.Request.Context(), userID)
			if err == nil {
				c.Set(constants.ContextKeyUserID, user.ID)
				c.Set(constants.ContextKeyUser, user)
				c.Next()
				return
			}
			// Stale session, fall through to the token path.
			session.Clear()
			_ = session.Save()
		}

		token := bearerToken(c)
		if token == "" {
			apierrors.AbortUnauthorized(c, "")
			return
		}
		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			apierrors.AbortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// GetUser retrieves the authenticated user from context.
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// GetUserID retrieves the current user ID from context.
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
