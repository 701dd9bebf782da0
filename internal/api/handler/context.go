package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/middleware"
	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// CurrentUser returns the live user injected by the role wrapper, or nil on
// public routes where nobody is signed in.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(middleware.UserKey).(*domain.User)
	return u
}

// CurrentClaims returns the verified token behind the current request.
func CurrentClaims(c echo.Context) *domain.TokenClaims {
	claims, _ := c.Get(middleware.ClaimsKey).(*domain.TokenClaims)
	return claims
}
