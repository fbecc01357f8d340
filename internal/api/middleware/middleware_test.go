package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureCORS_AllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	e.Use(SecureCORS([]string{"http://app.invoxly.example"}, false))
	e.GET("/api/invoices", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set(echo.HeaderOrigin, "http://app.invoxly.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.invoxly.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSecureCORS_DropsWildcardInProduction(t *testing.T) {
	e := echo.New()
	e.Use(SecureCORS([]string{"*"}, true))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.NotEqual(t, "http://evil.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.NotEqual(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSecureHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecureHeaders())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")
}

func TestRateLimiter_AllowsWithinBudget(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(100, 10, nil))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(1, 2, nil))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		e.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func TestRateLimiter_PerIP(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(1, 1, nil))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Exhaust the first IP's budget.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A different IP still gets through.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_ReusesLimiterPerIP(t *testing.T) {
	l := NewIPRateLimiter(1, 1)

	a := l.GetLimiter("10.0.0.1")
	b := l.GetLimiter("10.0.0.1")
	c := l.GetLimiter("10.0.0.2")

	require.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	first := l.GetLimiter("10.0.0.1")

	l.CleanupOldEntries()

	assert.NotSame(t, first, l.GetLimiter("10.0.0.1"))
}
