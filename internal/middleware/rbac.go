package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/response"
)

// RequireRoles gates a route group to the given roles. The check runs once
// here at the authorization boundary; handlers downstream trust the claims.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}

// RequireStaff gates a route group to ADMIN and MENTOR users.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(model.RoleAdmin, model.RoleMentor)
}
