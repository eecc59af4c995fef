// Package middleware contains the echo middlewares that gate authenticated
// requests on live session state.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/session"
	"go.pilab.hu/coursehub/token"
)

// Authn validates the bearer token, then checks the embedded session id
// against the session manager. A cryptographically valid token whose session
// has been revoked is rejected here; that is the mechanism that makes logout
// and device-limit eviction effective before the token expires.
func Authn(sessions *session.Manager, tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			identity, err := sessions.Validate(c.Request().Context(), claims.SessionID)
			if err != nil {
				if errors.Is(err, session.ErrSessionInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired or revoked")
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}
			identity.Email = claims.Subject

			ctx := domain.ContextWithIdentity(c.Request().Context(), identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format: expected Bearer token")
	}
	return parts[1], nil
}

// RequireRole rejects identities whose role is not in the allow list. Must be
// chained after Authn.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			for _, role := range roles {
				if identity.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// MustIdentity returns the identity stored by Authn. It panics when called
// outside an authenticated route, which is a routing bug.
func MustIdentity(c echo.Context) domain.Identity {
	identity, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok {
		panic("middleware: identity missing from authenticated route")
	}
	return identity
}
