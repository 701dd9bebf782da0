package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/middleware"
)

type pageResponse struct {
	Page   string `json:"page"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Page answers the gated page paths with the identity the gate forwarded.
// Rendering is left to the frontend.
func Page(c echo.Context) error {
	h := c.Request().Header
	return c.JSON(http.StatusOK, pageResponse{
		Page:   c.Request().URL.Path,
		UserID: h.Get(middleware.HeaderUserID),
		Role:   h.Get(middleware.HeaderUserRole),
	})
}
