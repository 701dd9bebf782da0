package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/ports"
)

type FavoriteHandler struct {
	service ports.FavoriteService
}

func NewFavoriteHandler(service ports.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// List handles GET /api/favorites.
//
// @Summary      List favorite pets
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Favorite
// @Router       /api/favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	favs, err := h.service.List(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favs)
}

// Add handles POST /api/favorites.
//
// @Summary      Add a favorite
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      favoriteRequest  true  "Pet to favorite"
// @Success      201   {object}  domain.Favorite
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/favorites [post]
func (h *FavoriteHandler) Add(c echo.Context) error {
	var req favoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fav, err := h.service.Add(c.Request().Context(), CurrentUser(c), req.PetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fav)
}

// Remove handles DELETE /api/favorites/:petId.
//
// @Summary      Remove a favorite
// @Tags         favorites
// @Security     BearerAuth
// @Param        petId  path  string  true  "Pet ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/favorites/{petId} [delete]
func (h *FavoriteHandler) Remove(c echo.Context) error {
	if err := h.service.Remove(c.Request().Context(), CurrentUser(c), c.Param("petId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
