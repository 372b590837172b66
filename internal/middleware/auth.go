package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAPIKey is the request header HTTP clients authenticate with.
const HeaderAPIKey = "X-API-Key"

// QueryAPIKey is the query parameter WebSocket clients authenticate with,
// since browsers cannot set custom headers on WebSocket dials.
const QueryAPIKey = "api_key"

// APIKeyAuth returns middleware that rejects requests whose API key is not in
// the configured key list. The key is read from the X-API-Key header first,
// then from the api_key query parameter.
//
// An empty key list locks the API down entirely; running without keys is a
// configuration error, not an open door.
func APIKeyAuth(keys []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(keys) == 0 {
				slog.Warn("API key list is empty, rejecting request", "path", c.Path())
				return echo.NewHTTPError(http.StatusUnauthorized, "service has no API keys configured")
			}

			key := c.Request().Header.Get(HeaderAPIKey)
			if key == "" {
				key = c.QueryParam(QueryAPIKey)
			}
			if !ValidKey(keys, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid API key")
			}
			return next(c)
		}
	}
}

// ValidKey reports whether key is one of the configured keys. Comparison is
// constant-time per candidate.
func ValidKey(keys []string, key string) bool {
	if key == "" {
		return false
	}
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
