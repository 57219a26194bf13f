// Package middleware holds the Echo middleware chain: bearer-token
// authentication, the Redis token-bucket rate limiter and the Redis
// response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

// CredentialKey is the Echo context key the authenticated credential
// is stored under.
const CredentialKey = "credential"

// RequireAuth authenticates the request from its Authorization header
// and stores the resolved credential in the Echo context. Requests
// without a valid bearer access token get a 401 and never reach the
// handler.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			cred, err := auth.CurrentUser(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set(CredentialKey, cred)
			return next(c)
		}
	}
}

// CredentialFrom returns the credential stored by RequireAuth. The
// second return is false on routes that skipped authentication.
func CredentialFrom(c echo.Context) (model.Credential, bool) {
	cred, ok := c.Get(CredentialKey).(model.Credential)
	return cred, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
