package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route group to the given roles. Runs after
// AuthMiddleware, which put the role in the context.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextUserRole)
		roleStr, _ := role.(string)

		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// RequireBusiness additionally demands that the token carries a business id.
func RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextUserRole)
		roleStr, _ := role.(string)

		if roleStr != "business" && roleStr != "staff" && roleStr != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		businessID, _ := c.Get(ContextBusinessID)
		if id, ok := businessID.(uint); !ok || id == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no_business_for_user"})
			return
		}

		c.Next()
	}
}
