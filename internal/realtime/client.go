package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/api/handler"
	"github.com/pawhaven/adoption-api/internal/api/metrics"
	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// Client events.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// Server events besides the ones emitted by the chat service.
const (
	EventJoined     = "joined_chat"
	EventUserTyping = "user_typing"
	EventError      = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 64
	opTimeout      = 5 * time.Second
)

const errNotConnected = "connection is no longer registered"

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chatRef struct {
	ChatID string `json:"chatId"`
}

type sendMessageData struct {
	ChatID     string `json:"chatId"`
	Content    string `json:"content"`
	ReceiverID string `json:"receiverId"`
}

type typingData struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

type userTypingData struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type errorData struct {
	Message string `json:"message"`
}

// Client is one authenticated socket. The read loop handles events one at a
// time; the write loop is the only writer on the connection.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	user  *domain.User
	chats ports.ChatService
	send  chan []byte
	done  chan struct{}
	once  sync.Once
	ctx   context.Context
	log   zerolog.Logger
}

func newClient(ctx context.Context, hub *Hub, conn *websocket.Conn, user *domain.User, chats ports.ChatService, log zerolog.Logger) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		user:  user,
		chats: chats,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		ctx:   ctx,
		log:   log.With().Str("user_id", user.ID).Logger(),
	}
}

func (c *Client) userID() string { return c.user.ID }

// enqueue never blocks. It returns false when the client is closed or its
// buffer is full.
func (c *Client) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) emit(event string, payload any) {
	b, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("encode relay event")
		return
	}
	if !c.enqueue(b) {
		metrics.RealtimeDroppedTotal.Inc()
		c.hub.unregister(c)
	}
}

func (c *Client) emitError(msg string) {
	c.emit(EventError, errorData{Message: msg})
}

// serve runs the socket until either side goes away.
func (c *Client) serve() {
	c.hub.register(c)
	metrics.RealtimeConnections.Inc()
	defer metrics.RealtimeConnections.Dec()

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("relay socket closed")
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handle dispatches one inbound frame. Failures are reported on the error
// channel and never close the socket.
func (c *Client) handle(raw []byte) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		metrics.RealtimeEventsTotal.WithLabelValues("unknown").Inc()
		c.emitError("malformed event")
		return
	}
	metrics.RealtimeEventsTotal.WithLabelValues(eventLabel(in.Event)).Inc()

	ctx, cancel := context.WithTimeout(c.ctx, opTimeout)
	defer cancel()

	switch in.Event {
	case EventJoinChat:
		var ref chatRef
		if !c.decode(in.Data, &ref) {
			return
		}
		if _, err := c.chats.GetChat(ctx, ref.ChatID, c.user); err != nil {
			c.fail(err)
			return
		}
		if !c.hub.Join(ref.ChatID, c) {
			c.emitError(errNotConnected)
			return
		}
		c.emit(EventJoined, ref)

	case EventLeaveChat:
		var ref chatRef
		if !c.decode(in.Data, &ref) {
			return
		}
		c.hub.Leave(ref.ChatID, c)

	case EventSendMessage:
		var d sendMessageData
		if !c.decode(in.Data, &d) {
			return
		}
		if _, err := c.chats.PostMessage(ctx, d.ChatID, c.user, d.ReceiverID, d.Content); err != nil {
			c.fail(err)
			return
		}
		metrics.MessagesPostedTotal.WithLabelValues("ws").Inc()

	case EventTyping:
		var d typingData
		if !c.decode(in.Data, &d) {
			return
		}
		if !c.hub.InRoom(d.ChatID, c) {
			c.emitError("join the chat first")
			return
		}
		c.hub.emit(d.ChatID, c, EventUserTyping, userTypingData{
			ChatID:   d.ChatID,
			UserID:   c.user.ID,
			IsTyping: d.IsTyping,
		})

	default:
		c.emitError("unknown event")
	}
}

func (c *Client) decode(data json.RawMessage, v any) bool {
	if len(data) == 0 || json.Unmarshal(data, v) != nil {
		c.emitError("malformed event data")
		return false
	}
	return true
}

// fail reports a service error to the socket. Unknown failures are logged
// and reported generically.
func (c *Client) fail(err error) {
	if _, msg, ok := handler.StatusFor(err); ok {
		c.emitError(msg)
		return
	}
	c.log.Error().Err(err).Msg("relay event failed")
	c.emitError("internal error")
}

func eventLabel(event string) string {
	switch event {
	case EventJoinChat, EventLeaveChat, EventSendMessage, EventTyping:
		return event
	}
	return "unknown"
}
