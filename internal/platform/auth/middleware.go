package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie the browser flows carry the token in; API
// clients use the Authorization header instead.
const SessionCookie = "medrec_session"

// Middleware resolves the session token on each request and stores the
// Identity in the request context. Requests without a valid token continue
// anonymous; the route guards decide what anonymous callers may reach.
func Middleware(sessions *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c)
			if tokenStr == "" {
				if cookie, err := c.Cookie(SessionCookie); err == nil {
					tokenStr = cookie.Value
				}
			}
			if tokenStr == "" {
				return next(c)
			}

			id, err := sessions.Parse(tokenStr)
			if err != nil {
				// Stale or tampered token: treat as unauthenticated.
				return next(c)
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// IdentityFromContext returns the resolved caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// ContextWithIdentity returns a context carrying the identity. Used by tests
// and by handlers that need to act on behalf of a freshly issued session.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
