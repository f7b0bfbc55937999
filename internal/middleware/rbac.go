package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
	"github.com/noah-isme/internship-docs-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The sentinel
// "SELF" allows a caller through when the :id path parameter matches
// their own user ID or email; subject references are an email or a
// name, so both identifiers count as "self".
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		allowedRoles := make(map[models.UserRole]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[models.UserRole(a)] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			targetID := c.Param("id")
			if targetID != "" && (targetID == claims.UserID || (claims.Email != "" && targetID == claims.Email)) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
