package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// AdminHandler serves the ADMIN-only moderation endpoints.
type AdminHandler struct {
	admin    ports.AdminService
	activity ports.ActivityService
}

func NewAdminHandler(admin ports.AdminService, activity ports.ActivityService) *AdminHandler {
	return &AdminHandler{admin: admin, activity: activity}
}

// Users handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role   query     string  false  "USER, OWNER or ADMIN"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  userPageResponse
// @Failure      400    {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	page, err := h.admin.ListUsers(c.Request().Context(), c.QueryParam("role"), queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	items := page.Items
	if items == nil {
		items = []*domain.User{}
	}
	return c.JSON(http.StatusOK, userPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

// DeleteUser handles DELETE /api/admin/users/:id. Administrators cannot be
// deleted.
//
// @Summary      Delete a user and everything they own
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.admin.DeleteUser(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// VerifyUser handles PATCH /api/admin/users/:id/verify.
//
// @Summary      Set a user's verified flag
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string         true  "User ID"
// @Param        body  body  verifyRequest  true  "Verified flag"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id}/verify [patch]
func (h *AdminHandler) VerifyUser(c echo.Context) error {
	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.admin.VerifyUser(c.Request().Context(), CurrentUser(c), c.Param("id"), *req.Verified); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Pets handles GET /api/admin/pets. Unlike the public listing it includes
// unavailable pets.
//
// @Summary      List all pets
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        owner  query     string  false  "Owner ID"
// @Param        q      query     string  false  "Free text search"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  petPageResponse
// @Router       /api/admin/pets [get]
func (h *AdminHandler) Pets(c echo.Context) error {
	filter := petFilter(c)
	filter.OwnerID = c.QueryParam("owner")

	page, err := h.admin.ListPets(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetPage(page))
}

// DeletePet handles DELETE /api/admin/pets/:id.
//
// @Summary      Delete any pet
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Pet ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/pets/{id} [delete]
func (h *AdminHandler) DeletePet(c echo.Context) error {
	if err := h.admin.DeletePet(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activities handles GET /api/admin/activities.
//
// @Summary      Activity feed, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type   query     string  false  "auth, user, pet, adoption, chat or setting"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  activityPageResponse
// @Router       /api/admin/activities [get]
func (h *AdminHandler) Activities(c echo.Context) error {
	page, err := h.activity.Feed(c.Request().Context(), ports.ActivityFilter{
		Type:  domain.ActivityType(c.QueryParam("type")),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 0),
	})
	if err != nil {
		return err
	}
	items := page.Items
	if items == nil {
		items = []*domain.Activity{}
	}
	return c.JSON(http.StatusOK, activityPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}
