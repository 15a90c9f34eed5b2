package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

// RequireRole gates a route group to the given roles. Fine-grained checks
// still happen in the services; this just rejects obviously wrong callers
// before they reach a handler.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.AbortUnauthorized(c, "")
			return
		}
		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "PERMISSION_DENIED",
				"reason":  "insufficient_role",
				"message": "This endpoint requires a higher role",
			})
			return
		}
		c.Next()
	}
}
