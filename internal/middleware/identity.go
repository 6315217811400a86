package middleware

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated subject, or "anon" before JWTAuth
// has run or when the token had no subject.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
