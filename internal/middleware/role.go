package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleAdmin is the only role allowed on /v1/admin.
const RoleAdmin = "ADMIN"

// RequireRole rejects requests whose role, as stored by JWTAuth, is not one
// of roles. It must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
