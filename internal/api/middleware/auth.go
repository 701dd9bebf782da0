package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/metrics"
	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// Context keys set by Authenticated.
const (
	UserKey   = "user"
	ClaimsKey = "token_claims"
)

// IdentityResolver loads the live user behind a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (*domain.User, *domain.TokenClaims, error)
}

// Authenticated resolves the caller and injects the live user and the token
// claims into the context. Anonymous callers get 401. Storage faults bubble
// up to the central error handler.
func Authenticated(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, claims, err := resolver.Resolve(c.Request())
			if err != nil {
				return err
			}
			if user == nil {
				metrics.AuthRejectionsTotal.WithLabelValues("unauthorized").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}

			c.Set(UserKey, user)
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole is the authoritative authorization boundary: it resolves the
// live user (401 when absent) and enforces the role set against the stored
// role (403 on mismatch), never against the role embedded in the token.
func RequireRole(resolver IdentityResolver, roles ...string) echo.MiddlewareFunc {
	authn := Authenticated(resolver)
	authz := RBAC(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return authn(authz(next))
	}
}

// Identify injects the caller when a valid credential is present and lets
// anonymous requests through untouched. Public routes that render
// differently for owners use it.
func Identify(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, claims, err := resolver.Resolve(c.Request())
			if err != nil {
				return err
			}
			if user != nil {
				c.Set(UserKey, user)
				c.Set(ClaimsKey, claims)
			}
			return next(c)
		}
	}
}
