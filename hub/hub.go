// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/coin-poll/models"
)

// Scope decides who receives a poll broadcast.
type Scope string

const (
	// ScopePoll delivers to clients that joined the poll.
	ScopePoll Scope = "poll"
	// ScopeGlobal delivers every poll to every connected client.
	ScopeGlobal Scope = "global"
)

// ParseScope validates a configured scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopePoll, ScopeGlobal:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown broadcast scope %q (want poll or global)", s)
}

// Observer is told how many clients are connected after every change.
type Observer func(connected int)

// Hub tracks connected clients and the poll room each one has joined.
type Hub struct {
	scope    Scope
	logger   *slog.Logger
	observer Observer

	mu      sync.RWMutex
	clients map[*Client]string            // client -> joined poll_id ("" = none)
	rooms   map[string]map[*Client]struct{} // poll_id -> members
}

func New(scope Scope, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		scope:   scope,
		logger:  logger,
		clients: make(map[*Client]string),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// OnConnectedChange registers a callback for the connected-client count.
func (h *Hub) OnConnectedChange(o Observer) {
	h.mu.Lock()
	h.observer = o
	h.mu.Unlock()
}

func (h *Hub) Scope() Scope { return h.scope }

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = ""
	n, o := len(h.clients), h.observer
	h.mu.Unlock()

	h.logger.Debug("client connected", "client", c.id, "connected", n)
	if o != nil {
		o(n)
	}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	pollID, ok := h.clients[c]
	if ok {
		h.leaveLocked(c, pollID)
		delete(h.clients, c)
	}
	n, o := len(h.clients), h.observer
	h.mu.Unlock()

	if !ok {
		return
	}
	c.close()
	h.logger.Debug("client disconnected", "client", c.id, "connected", n)
	if o != nil {
		o(n)
	}
}

// Join moves c into the room of pollID, leaving any previous room.
func (h *Hub) Join(c *Client, pollID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.clients[c]
	if !ok {
		return
	}
	if prev == pollID {
		return
	}
	h.leaveLocked(c, prev)

	room := h.rooms[pollID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[pollID] = room
	}
	room[c] = struct{}{}
	h.clients[c] = pollID
}

func (h *Hub) leaveLocked(c *Client, pollID string) {
	if pollID == "" {
		return
	}
	room := h.rooms[pollID]
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, pollID)
	}
}

// Connected returns the number of registered clients.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients that joined pollID.
func (h *Hub) RoomSize(pollID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[pollID])
}

// Notify sends the snapshot to the poll's room, or to every client under
// ScopeGlobal. It never blocks: a client whose buffer is full is dropped.
func (h *Hub) Notify(pollID string, snapshot models.Poll) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("failed to encode poll snapshot", "poll_id", pollID, "error", err)
		return
	}
	frame, err := json.Marshal(models.Envelope{Type: models.EnvelopePoll, Data: data})
	if err != nil {
		h.logger.Error("failed to encode poll frame", "poll_id", pollID, "error", err)
		return
	}

	var lagging []*Client
	h.mu.RLock()
	if h.scope == ScopeGlobal {
		for c := range h.clients {
			if !c.enqueue(frame) {
				lagging = append(lagging, c)
			}
		}
	} else {
		for c := range h.rooms[pollID] {
			if !c.enqueue(frame) {
				lagging = append(lagging, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range lagging {
		h.logger.Warn("dropping slow client", "client", c.id, "poll_id", pollID)
		h.Unregister(c)
	}
}
