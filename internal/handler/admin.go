package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/mufant-museum/internal/catalog"
	"github.com/iliyamo/mufant-museum/internal/inspect"
	"github.com/iliyamo/mufant-museum/internal/middleware"
	"github.com/iliyamo/mufant-museum/internal/provision"
)

// AdminHandler exposes the inspection reporter and the provisioning
// pipeline to ADMIN users.
type AdminHandler struct {
	Reporter *inspect.Reporter
	Pipeline *provision.Pipeline
	// Cache and CachePrefix locate the response cache purged after a
	// successful provisioning run. Cache may be nil.
	Cache       *redis.Client
	CachePrefix string
}

func NewAdminHandler(r *inspect.Reporter, p *provision.Pipeline, rdb *redis.Client, cachePrefix string) *AdminHandler {
	return &AdminHandler{Reporter: r, Pipeline: p, Cache: rdb, CachePrefix: cachePrefix}
}

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// queryLimit parses ?limit=, defaulting to def. Negative or malformed
// values are rejected.
func queryLimit(c echo.Context, def int) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Report handles GET /v1/admin/report. ?format=text returns the check-mark
// layout; ?tables=a,b overrides the tables to describe.
func (h *AdminHandler) Report(c echo.Context) error {
	limit, ok := queryLimit(c, inspect.DefaultSampleLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a non-negative integer"})
	}
	var tables []string
	for _, t := range strings.Split(c.QueryParam("tables"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	rep := h.Reporter.Report(ctx, limit, tables...)

	if strings.EqualFold(c.QueryParam("format"), "text") {
		var buf bytes.Buffer
		if err := inspect.Render(&buf, rep); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
	}
	return c.JSON(http.StatusOK, rep)
}

// ListTables handles GET /v1/admin/tables.
func (h *AdminHandler) ListTables(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	names, err := h.Reporter.ListTables(ctx)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": names})
}

// DescribeTable handles GET /v1/admin/tables/:name.
func (h *AdminHandler) DescribeTable(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	ctx, cancel := storeCtx(c)
	defer cancel()
	cols, err := h.Reporter.DescribeTable(ctx, name)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"name": name, "columns": cols})
}

// CountActivities handles GET /v1/admin/activities/count?type=.
func (h *AdminHandler) CountActivities(c echo.Context) error {
	typ := c.QueryParam("type")
	ctx, cancel := storeCtx(c)
	defer cancel()
	n, err := h.Reporter.CountActivities(ctx, typ)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"type": strings.ToLower(strings.TrimSpace(typ)), "count": n})
}

// SampleActivities handles GET /v1/admin/activities/sample?limit=.
func (h *AdminHandler) SampleActivities(c echo.Context) error {
	limit, ok := queryLimit(c, inspect.DefaultSampleLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a non-negative integer"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	sample, err := h.Reporter.SampleActivities(ctx, limit)
	if err != nil {
		return storeError(c, err)
	}
	if sample == nil {
		sample = []inspect.ActivitySample{}
	}
	return c.JSON(http.StatusOK, echo.Map{"limit": limit, "activities": sample})
}

// Provision handles POST /v1/admin/provision?mode=&catalog=. Mode defaults
// to merge and catalog to "default". A row failure answers 422 with the
// offending table and name.
func (h *AdminHandler) Provision(c echo.Context) error {
	rawMode := c.QueryParam("mode")
	if rawMode == "" {
		rawMode = string(provision.Merge)
	}
	mode, err := provision.ParseMode(rawMode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	name := c.QueryParam("catalog")
	if name == "" {
		name = "default"
	}
	cat, err := catalog.Lookup(name, time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	sum, err := h.Pipeline.Provision(ctx, mode, cat)
	if err != nil {
		var rowErr *provision.RowError
		if errors.As(err, &rowErr) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": rowErr.Error(),
				"table": rowErr.Table,
				"name":  rowErr.Name,
			})
		}
		return storeError(c, err)
	}

	if n, err := middleware.PurgeCache(ctx, h.Cache, h.CachePrefix); err != nil {
		c.Logger().Warnf("[cache] purge after provision %s: %v", sum.RunID, err)
	} else if n > 0 {
		c.Logger().Infof("[cache] purged %d entries after provision %s", n, sum.RunID)
	}
	return c.JSON(http.StatusOK, sum)
}
