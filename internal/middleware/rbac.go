package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

// RequireRoles allows the request through only for the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "You do not have permissions to access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}
