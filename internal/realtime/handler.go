package realtime

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/api/middleware"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// Handler upgrades authenticated requests to relay sockets. The caller is
// resolved before the upgrade so anonymous clients get a plain 401.
type Handler struct {
	hub      *Hub
	resolver middleware.IdentityResolver
	chats    ports.ChatService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(hub *Hub, resolver middleware.IdentityResolver, chats ports.ChatService, log zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		chats:    chats,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      log,
	}
}

// Serve handles GET /api/ws.
//
// @Summary      Real-time chat relay
// @Description  WebSocket endpoint. Frames are {"event": string, "data": object}.
// @Tags         chats
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /api/ws [get]
func (h *Handler) Serve(c echo.Context) error {
	user, _, err := h.resolver.Resolve(c.Request())
	if err != nil {
		return err
	}
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := newClient(context.WithoutCancel(c.Request().Context()), h.hub, conn, user, h.chats, h.log)
	client.serve()
	return nil
}
