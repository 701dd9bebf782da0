package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// AdoptionHandler handles adoption requests and their decisions.
type AdoptionHandler struct {
	service ports.AdoptionService
}

func NewAdoptionHandler(service ports.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{service: service}
}

// Create handles POST /api/adoptions.
//
// @Summary      Request to adopt a pet
// @Tags         adoptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adoptionRequest  true  "Pet and message"
// @Success      201   {object}  domain.AdoptionRequest
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/adoptions [post]
func (h *AdoptionHandler) Create(c echo.Context) error {
	var req adoptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ar, err := h.service.Request(c.Request().Context(), CurrentUser(c), req.PetID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ar)
}

// Mine handles GET /api/adoptions/mine.
//
// @Summary      List my adoption requests
// @Tags         adoptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.AdoptionRequest
// @Router       /api/adoptions/mine [get]
func (h *AdoptionHandler) Mine(c echo.Context) error {
	list, err := h.service.ListMine(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Received handles GET /api/adoptions/received.
//
// @Summary      List requests for my pets
// @Tags         adoptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.AdoptionRequest
// @Router       /api/adoptions/received [get]
func (h *AdoptionHandler) Received(c echo.Context) error {
	list, err := h.service.ListReceived(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Decide handles PATCH /api/adoptions/:id.
//
// @Summary      Accept or reject an adoption request
// @Tags         adoptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Request ID"
// @Param        body  body      adoptionDecisionRequest  true  "Decision"
// @Success      200   {object}  domain.AdoptionRequest
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/adoptions/{id} [patch]
func (h *AdoptionHandler) Decide(c echo.Context) error {
	var req adoptionDecisionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ar, err := h.service.Decide(c.Request().Context(), CurrentUser(c), c.Param("id"), domain.AdoptionStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ar)
}
