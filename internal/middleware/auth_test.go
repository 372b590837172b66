package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/middleware"
)

func runRequest(t *testing.T, keys []string, configure func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.APIKeyAuth(keys))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	configure(req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyAuthHeader(t *testing.T) {
	rec := runRequest(t, []string{"secret"}, func(req *http.Request) {
		req.Header.Set(middleware.HeaderAPIKey, "secret")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAPIKeyAuthQueryParam(t *testing.T) {
	rec := runRequest(t, []string{"secret"}, func(req *http.Request) {
		q := req.URL.Query()
		q.Set(middleware.QueryAPIKey, "secret")
		req.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuthRejectsWrongKey(t *testing.T) {
	rec := runRequest(t, []string{"secret"}, func(req *http.Request) {
		req.Header.Set(middleware.HeaderAPIKey, "guess")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuthRejectsMissingKey(t *testing.T) {
	rec := runRequest(t, []string{"secret"}, func(req *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuthRejectsWhenNoKeysConfigured(t *testing.T) {
	rec := runRequest(t, nil, func(req *http.Request) {
		req.Header.Set(middleware.HeaderAPIKey, "anything")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidKey(t *testing.T) {
	keys := []string{"alpha", "beta"}
	assert.True(t, middleware.ValidKey(keys, "beta"))
	assert.False(t, middleware.ValidKey(keys, ""))
	assert.False(t, middleware.ValidKey(keys, "gamma"))
	assert.False(t, middleware.ValidKey(nil, "alpha"))
}
