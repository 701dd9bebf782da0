package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/metrics"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// ChatHandler exposes the REST side of chats. The socket relay mirrors
// PostMessage for live clients.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// List handles GET /api/chats.
//
// @Summary      List my chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ChatSummary
// @Router       /api/chats [get]
func (h *ChatHandler) List(c echo.Context) error {
	chats, err := h.service.ListChats(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chats)
}

// Get handles GET /api/chats/:id.
//
// @Summary      Get a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  domain.Chat
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	chat, err := h.service.GetChat(c.Request().Context(), c.Param("id"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chat)
}

// Create handles POST /api/chats/create. It answers 201 for a new chat and
// 200 when the pair already had one.
//
// @Summary      Start or reopen a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createChatRequest  true  "Other participant"
// @Success      200   {object}  domain.Chat
// @Success      201   {object}  domain.Chat
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/chats/create [post]
func (h *ChatHandler) Create(c echo.Context) error {
	var req createChatRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	chat, created, err := h.service.CreateChat(c.Request().Context(), CurrentUser(c), req.UserID)
	if err != nil {
		return err
	}
	if created {
		return c.JSON(http.StatusCreated, chat)
	}
	return c.JSON(http.StatusOK, chat)
}

// Messages handles GET /api/chats/:id/messages.
//
// @Summary      Chat history
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {array}   domain.Message
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id}/messages [get]
func (h *ChatHandler) Messages(c echo.Context) error {
	msgs, err := h.service.ListMessages(c.Request().Context(), c.Param("id"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// Post handles POST /api/chats/:id/messages.
//
// @Summary      Send a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Chat ID"
// @Param        body  body      messageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/chats/{id}/messages [post]
func (h *ChatHandler) Post(c echo.Context) error {
	var req messageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := h.service.PostMessage(c.Request().Context(), c.Param("id"), CurrentUser(c), req.ReceiverID, req.Content)
	if err != nil {
		return err
	}
	metrics.MessagesPostedTotal.WithLabelValues("rest").Inc()
	return c.JSON(http.StatusCreated, msg)
}

// MarkRead handles PATCH /api/chats/:id/messages/:messageId.
//
// @Summary      Mark a message as read
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Chat ID"
// @Param        messageId  path      string  true  "Message ID"
// @Success      200        {object}  domain.Message
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/chats/{id}/messages/{messageId} [patch]
func (h *ChatHandler) MarkRead(c echo.Context) error {
	msg, err := h.service.MarkRead(c.Request().Context(), c.Param("id"), c.Param("messageId"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}

// MarkAllRead handles PUT /api/chats/:id/messages/read-all.
//
// @Summary      Mark every message addressed to me as read
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  readAllResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id}/messages/read-all [put]
func (h *ChatHandler) MarkAllRead(c echo.Context) error {
	n, err := h.service.MarkAllRead(c.Request().Context(), c.Param("id"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, readAllResponse{Updated: n})
}
