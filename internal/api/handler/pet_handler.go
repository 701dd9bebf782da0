package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// imageField is the multipart form field carrying an uploaded pet photo.
const imageField = "image"

// PetHandler handles HTTP requests for pet listings and their images.
type PetHandler struct {
	service ports.PetService
}

func NewPetHandler(service ports.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// List handles GET /api/pets.
//
// @Summary      List available pets
// @Tags         pets
// @Produce      json
// @Param        type    query     string  false  "Pet type"
// @Param        size    query     string  false  "Size"
// @Param        gender  query     string  false  "Gender"
// @Param        breed   query     string  false  "Breed"
// @Param        q       query     string  false  "Free text search"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  petPageResponse
// @Router       /api/pets [get]
func (h *PetHandler) List(c echo.Context) error {
	filter := petFilter(c)
	filter.AvailableOnly = true

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetPage(page))
}

// Get handles GET /api/pets/:id.
//
// @Summary      Get a pet
// @Tags         pets
// @Produce      json
// @Param        id   path      string  true  "Pet ID"
// @Success      200  {object}  domain.Pet
// @Failure      404  {object}  errorResponse
// @Router       /api/pets/{id} [get]
func (h *PetHandler) Get(c echo.Context) error {
	pet, err := h.service.Get(c.Request().Context(), c.Param("id"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pet)
}

// Mine handles GET /api/pets/my-pets.
//
// @Summary      List the owner's pets
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Pet
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/pets/my-pets [get]
func (h *PetHandler) Mine(c echo.Context) error {
	pets, err := h.service.ListMine(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pets)
}

// Create handles POST /api/pets.
//
// @Summary      Create a pet listing
// @Tags         pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      petRequest  true  "Pet details"
// @Success      201   {object}  domain.Pet
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/pets [post]
func (h *PetHandler) Create(c echo.Context) error {
	var req petRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pet, err := h.service.Create(c.Request().Context(), CurrentUser(c), ports.PetInput{
		Name:        req.Name,
		Type:        req.Type,
		Breed:       req.Breed,
		Age:         req.Age,
		Size:        req.Size,
		Gender:      req.Gender,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pet)
}

// Update handles PATCH /api/pets/:id.
//
// @Summary      Update a pet listing
// @Tags         pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Pet ID"
// @Param        body  body      petUpdateRequest  true  "Fields to change"
// @Success      200   {object}  domain.Pet
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/pets/{id} [patch]
func (h *PetHandler) Update(c echo.Context) error {
	var req petUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pet, err := h.service.Update(c.Request().Context(), CurrentUser(c), c.Param("id"), domain.PetUpdate{
		Name:        req.Name,
		Type:        req.Type,
		Breed:       req.Breed,
		Age:         req.Age,
		Size:        req.Size,
		Gender:      req.Gender,
		Description: req.Description,
		Location:    req.Location,
		Available:   req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pet)
}

// Delete handles DELETE /api/pets/:id.
//
// @Summary      Delete a pet listing
// @Tags         pets
// @Security     BearerAuth
// @Param        id   path  string  true  "Pet ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/pets/{id} [delete]
func (h *PetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /api/pets/:id/images.
//
// @Summary      Upload a pet image
// @Tags         pets
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Pet ID"
// @Param        image  formData  file    true  "JPEG, PNG, GIF or WebP image"
// @Success      201    {object}  domain.PetImage
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /api/pets/{id}/images [post]
func (h *PetHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile(imageField)
	if err != nil {
		return fmt.Errorf("%w: %s file is required", domain.ErrInvalidInput, imageField)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	img, err := h.service.AddImage(c.Request().Context(), CurrentUser(c), c.Param("id"), ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, img)
}

// Image handles GET /api/pets/:id/images/:imageId and streams the stored file.
//
// @Summary      Download a pet image
// @Tags         pets
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Param        id       path  string  true  "Pet ID"
// @Param        imageId  path  string  true  "Image ID"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /api/pets/{id}/images/{imageId} [get]
func (h *PetHandler) Image(c echo.Context) error {
	viewer := CurrentUser(c)
	img, body, err := h.service.OpenImage(c.Request().Context(), c.Param("id"), c.Param("imageId"), viewer)
	if err != nil {
		return err
	}
	defer body.Close()

	cache := "public, max-age=86400"
	if viewer != nil {
		cache = "private, max-age=86400"
	}
	c.Response().Header().Set("Cache-Control", cache)
	return c.Stream(http.StatusOK, img.ContentType, body)
}

// DeleteImage handles DELETE /api/pets/:id/images/:imageId.
//
// @Summary      Delete a pet image
// @Tags         pets
// @Security     BearerAuth
// @Param        id       path  string  true  "Pet ID"
// @Param        imageId  path  string  true  "Image ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/pets/{id}/images/{imageId} [delete]
func (h *PetHandler) DeleteImage(c echo.Context) error {
	if err := h.service.RemoveImage(c.Request().Context(), CurrentUser(c), c.Param("id"), c.Param("imageId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func petFilter(c echo.Context) domain.PetFilter {
	return domain.PetFilter{
		Type:   c.QueryParam("type"),
		Size:   c.QueryParam("size"),
		Gender: c.QueryParam("gender"),
		Breed:  c.QueryParam("breed"),
		Query:  c.QueryParam("q"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	}
}

func toPetPage(p *ports.PetPage) petPageResponse {
	items := p.Items
	if items == nil {
		items = []*domain.Pet{}
	}
	return petPageResponse{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit, TotalPages: p.TotalPages}
}
