// Package middleware provides HTTP middleware for the Invoxly API.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	seclog "github.com/voralis/invoxly-backend/internal/logger"
	"github.com/voralis/invoxly-backend/internal/repository"
)

// Context keys set by SessionAuth
const (
	ContextUserEmail    = "user_email"
	ContextSessionToken = "session_token"
)

// SessionAuth resolves the Authorization bearer token against the sessions
// table. Expired or unknown tokens get a 401; on success the user email
// and token are stored on the request context.
func SessionAuth(sessions repository.SessionRepository, logger *slog.Logger) echo.MiddlewareFunc {
	audit := auditLogger(logger)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				audit.AuthFailure(c.RealIP(), c.Path(), "missing authorization header")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "missing authorization header",
				})
			}

			session, err := sessions.GetByToken(c.Request().Context(), token)
			if err != nil {
				audit.AuthFailure(c.RealIP(), c.Path(), "invalid or expired session")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired session",
				})
			}

			c.Set(ContextUserEmail, session.UserEmail)
			c.Set(ContextSessionToken, session.Token)
			return next(c)
		}
	}
}

// auditLogger wraps the given logger for security event output
func auditLogger(logger *slog.Logger) *seclog.SecurityLogger {
	if logger == nil {
		return seclog.NewSecurityLogger()
	}
	return seclog.NewSecurityLoggerWithHandler(logger.Handler())
}

// bearerToken extracts the token from an "Authorization: Bearer" header
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
