package handler // handler holds the HTTP handlers of the admin surface

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mufant-museum/internal/database"
)

// HealthHandler reports whether the store answers.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Health pings the store and returns "ok", or 503 when the ping fails.
func (h *HealthHandler) Health(c echo.Context) error {
	if err := database.Ping(c.Request().Context(), h.DB); err != nil {
		c.Logger().Warnf("healthz: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.String(http.StatusOK, "ok")
}
