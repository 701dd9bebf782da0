// Package realtime relays chat events to connected sockets. Room membership
// lives in memory only; the chat store remains the source of truth and a
// client that reconnects reloads history over REST.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/api/metrics"
)

// Hub owns the chat rooms and the set of connected clients.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
		log:     log,
	}
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Broadcast sends an event to every client joined to chatID.
func (h *Hub) Broadcast(chatID, event string, payload any) {
	h.emit(chatID, nil, event, payload)
}

// emit delivers to the room, skipping except. Clients whose buffer is full
// are dropped instead of blocking the room.
func (h *Hub) emit(chatID string, except *Client, event string, payload any) {
	b, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode relay event")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[chatID]))
	for c := range h.rooms[chatID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(b) {
			h.log.Warn().Str("user_id", c.userID()).Str("chat_id", chatID).Msg("dropping slow relay client")
			metrics.RealtimeDroppedTotal.Inc()
			h.unregister(c)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		h.clients[c] = make(map[string]struct{})
	}
}

// unregister removes c from every room and closes it. It is safe to call
// more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	for chatID := range h.clients[c] {
		h.removeLocked(chatID, c)
	}
	delete(h.clients, c)
	h.mu.Unlock()

	c.close()
}

// Join adds c to the chat room and reports whether it did. It returns false
// once c has been dropped from the hub. Callers check participation first.
func (h *Hub) Join(chatID string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[c]
	if !ok {
		return false
	}
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[chatID] = room
	}
	room[c] = struct{}{}
	joined[chatID] = struct{}{}
	return true
}

// Leave removes c from the chat room.
func (h *Hub) Leave(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(chatID, c)
}

func (h *Hub) removeLocked(chatID string, c *Client) {
	if room, ok := h.rooms[chatID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if joined, ok := h.clients[c]; ok {
		delete(joined, chatID)
	}
}

// InRoom reports whether c has joined chatID.
func (h *Hub) InRoom(chatID string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[chatID][c]
	return ok
}

// RoomSize returns the number of clients joined to chatID.
func (h *Hub) RoomSize(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// Shutdown disconnects every client.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
}
