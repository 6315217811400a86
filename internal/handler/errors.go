package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mufant-museum/internal/database"
)

// storeError maps the store error taxonomy to an HTTP response.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, database.ErrConstraint):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, database.ErrConnectivity):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	c.Logger().Errorf("store: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
