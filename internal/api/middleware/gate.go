package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/metrics"
	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// Forwarded identity headers. Client-supplied values are always stripped.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

const signInPath = "/auth/signin"

var (
	authExemptPrefixes = []string{"/auth/signin", "/auth/signup", "/api/auth"}
	protectedPrefixes  = []string{"/dashboard", "/admin", "/profile", "/messages", "/favorites", "/my-pets", "/pets/new"}
)

// ClaimsReader verifies a request credential without touching storage.
type ClaimsReader interface {
	Claims(r *http.Request) *domain.TokenClaims
}

// Gate guards page paths. It runs before routing and only uses the role
// carried in the token, so its redirects are advisory; API handlers
// re-check against the stored user.
func Gate(reader ClaimsReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			req.Header.Del(HeaderUserID)
			req.Header.Del(HeaderUserRole)

			path := req.URL.Path
			if matchesAny(path, authExemptPrefixes) || !matchesAny(path, protectedPrefixes) {
				metrics.GateDecisionsTotal.WithLabelValues("pass").Inc()
				return next(c)
			}

			claims := reader.Claims(req)
			if claims == nil {
				metrics.GateDecisionsTotal.WithLabelValues("signin").Inc()
				target := signInPath + "?callbackUrl=" + url.QueryEscape(req.URL.RequestURI())
				return c.Redirect(http.StatusFound, target)
			}

			isAdmin := claims.Role == domain.RoleAdmin
			switch {
			case !isAdmin && hasPrefix(path, "/admin"):
				metrics.GateDecisionsTotal.WithLabelValues("to_dashboard").Inc()
				return c.Redirect(http.StatusFound, "/dashboard")
			case isAdmin && hasPrefix(path, "/dashboard"):
				metrics.GateDecisionsTotal.WithLabelValues("to_admin").Inc()
				return c.Redirect(http.StatusFound, "/admin")
			}

			req.Header.Set(HeaderUserID, claims.UserID)
			req.Header.Set(HeaderUserRole, claims.Role)
			metrics.GateDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}

// hasPrefix matches whole path segments: "/admin" covers "/admin" and
// "/admin/users" but not "/administrator".
func hasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}
