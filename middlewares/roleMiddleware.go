package middlewares

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose token role is not in the allowed set.
// Admin passes every gate.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles)+1)
	allowed[models.UserRoleAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, ok := utils.GetRoleFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if !allowed[models.UserRole(role)] {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
