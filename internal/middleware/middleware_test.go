package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mufant-museum/internal/config"
	"github.com/iliyamo/mufant-museum/internal/utils"
)

const testSecret = "test-secret"

func newAdminEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/v1/admin/report", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": c.Get(CtxUserID), "role": c.Get(CtxRole)})
	}, mw...)
	return e
}

func bearer(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, "7", role, ttl)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/report", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := newAdminEcho(JWTAuth(testSecret), RequireRole(RoleAdmin))

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"admin token", bearer(t, RoleAdmin, time.Minute), http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", bearer(t, RoleAdmin, -time.Minute), http.StatusUnauthorized},
		{"visitor role", bearer(t, "VISITOR", time.Minute), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.auth)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := serve(e, bearer(t, RoleAdmin, time.Minute))
	assert.JSONEq(t, `{"user":"7","role":"ADMIN"}`, rec.Body.String())
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	e := newAdminEcho(RequireRole(RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(e, "").Code)
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", currentUserID(c))
	c.Set(CtxUserID, "")
	assert.Equal(t, "anon", currentUserID(c))
	c.Set(CtxUserID, "12")
	assert.Equal(t, "12", currentUserID(c))
}

func TestMiddlewarePassThroughWithoutRedis(t *testing.T) {
	cacheCfg := config.CacheConfig{Enabled: true, Methods: []string{"GET"}, Prefix: "cache"}
	rlCfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, Prefix: "rl"}
	e := newAdminEcho(NewTokenBucket(rlCfg, nil), NewRedisCache(cacheCfg, nil))

	for i := 0; i < 3; i++ {
		rec := serve(e, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}

	n, err := PurgeCache(context.Background(), nil, "cache")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	ctxFor := func(method, target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(method, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/admin/tables/:name")
		return c
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/users?x=1"))
	b := cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/users?x=2"))
	c := cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/carts?x=1"))
	assert.Contains(t, a, "cache:")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/users?x=1")))

	cfg.KeyStrategy = "route"
	assert.Equal(t,
		cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/users?x=1")),
		cacheKey(cfg, ctxFor(http.MethodGet, "/v1/admin/tables/users?x=2")))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, err := cw.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
	assert.True(t, cw.truncated(6))
	assert.False(t, cw.truncated(4))
}

func TestRateKeyAndResult(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/report", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/admin/report")
	c.Set(CtxUserID, "7")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:7:route:GET /v1/admin/report", rateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:7", rateKey(cfg, c))

	res, ok := parseBucketResult([]any{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	assert.False(t, res.allowed)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	_, ok = parseBucketResult("nope")
	assert.False(t, ok)
}
