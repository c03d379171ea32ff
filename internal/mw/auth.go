package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

const (
	keyEmployee = "mw.employee"
	keyClaims   = "mw.claims"
)

// EmployeeLoader is the part of the store the auth middleware needs.
type EmployeeLoader interface {
	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Auth requires a valid bearer token whose employee still exists, is active
// and has not changed their password since the token was issued.
func Auth(tokens *auth.TokenManager, employees EmployeeLoader, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			unauthorized(c, "authentication required")
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			unauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		e, err := employees.GetEmployee(c.Request.Context(), claims.EmployeeID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			unauthorized(c, auth.ErrInvalidToken.Error())
			return
		case err != nil:
			log.WithError(err).Error("Failed to load employee for token")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !e.IsActive || e.TokenVersion != claims.TokenVersion {
			unauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		c.Set(keyEmployee, e)
		c.Set(keyClaims, claims)
		c.Next()
	}
}

// CurrentEmployee returns the employee loaded by Auth, or nil outside it.
func CurrentEmployee(c *gin.Context) *model.Employee {
	if v, ok := c.Get(keyEmployee); ok {
		return v.(*model.Employee)
	}
	return nil
}

// CurrentClaims returns the token claims stored by Auth.
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(keyClaims); ok {
		return v.(*auth.Claims)
	}
	return nil
}

// RequireAdmin lets only administrators through. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		e := CurrentEmployee(c)
		if e == nil || !e.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			return
		}
		c.Next()
	}
}

// RequireRole lets through employees with one of the roles, and admins.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		e := CurrentEmployee(c)
		if e != nil {
			if e.IsAdmin {
				c.Next()
				return
			}
			for _, r := range roles {
				if e.Role == r {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "your role does not allow this action"})
	}
}
