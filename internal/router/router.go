package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mufant-museum/internal/handler"
	"github.com/iliyamo/mufant-museum/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers account registration and login under /v1/auth and
// the authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterAdmin registers the inspection and provisioning routes under
// /v1/admin. Every route requires an ADMIN token and passes the rate
// limiter; only the GET routes go through the response cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, rateLimit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
		rateLimit,
	)

	g.GET("/report", h.Report, cache)
	g.GET("/tables", h.ListTables, cache)
	g.GET("/tables/:name", h.DescribeTable, cache)
	g.GET("/activities/count", h.CountActivities, cache)
	g.GET("/activities/sample", h.SampleActivities, cache)

	g.POST("/provision", h.Provision)
}
