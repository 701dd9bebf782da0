package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/ports"
)

type SettingHandler struct {
	service ports.SettingService
}

func NewSettingHandler(service ports.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// Public handles GET /api/settings/public.
//
// @Summary      Public site settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/settings/public [get]
func (h *SettingHandler) Public(c echo.Context) error {
	settings, err := h.service.Public(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// List handles GET /api/admin/settings.
//
// @Summary      List settings
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        category  query    string  false  "Category"
// @Success      200       {array}  domain.Setting
// @Router       /api/admin/settings [get]
func (h *SettingHandler) List(c echo.Context) error {
	settings, err := h.service.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// Put handles PUT /api/admin/settings/:key.
//
// @Summary      Create or update a setting
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        key   path      string          true  "Setting key"
// @Param        body  body      settingRequest  true  "Setting"
// @Success      200   {object}  domain.Setting
// @Failure      400   {object}  errorResponse
// @Router       /api/admin/settings/{key} [put]
func (h *SettingHandler) Put(c echo.Context) error {
	var req settingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	setting, err := h.service.Put(c.Request().Context(), CurrentUser(c), c.Param("key"), ports.SettingInput{
		Value:       req.Value,
		Category:    req.Category,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting)
}

// Delete handles DELETE /api/admin/settings/:key.
//
// @Summary      Delete a setting
// @Tags         admin
// @Security     BearerAuth
// @Param        key  path  string  true  "Setting key"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/settings/{key} [delete]
func (h *SettingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), CurrentUser(c), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
