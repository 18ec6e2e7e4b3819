// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/danielhkuo/coin-poll/auth"
	"github.com/danielhkuo/coin-poll/models"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// Client is one websocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(h *Hub, conn *websocket.Conn) *Client {
	return newClient(h, conn, sendBuffer)
}

func newClient(h *Hub, conn *websocket.Conn, buffer int) *Client {
	id, _ := auth.GenerateID(4)
	return &Client{
		id:   id,
		hub:  h,
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

func (c *Client) ID() string { return c.id }

// Join subscribes the client to pollID broadcasts.
func (c *Client) Join(pollID string) {
	c.hub.Join(c, pollID)
}

// Send queues an envelope for this client only.
func (c *Client) Send(env models.Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		c.hub.logger.Error("failed to encode frame", "client", c.id, "error", err)
		return
	}
	if !c.enqueue(frame) {
		c.hub.logger.Warn("dropping slow client", "client", c.id)
		c.hub.Unregister(c)
	}
}

// enqueue reports false when the client is closed or its buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump sends queued frames to the websocket connection until the
// client is unregistered or ctx ends.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				c.hub.logger.Warn("failed to write to client", "client", c.id, "error", err)
				return
			}
		}
	}
}

// ReadPump decodes envelopes from the connection and hands each to handle,
// in order. It unregisters the client when the connection ends.
func (c *Client) ReadPump(ctx context.Context, handle func(ctx context.Context, env models.Envelope)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				c.hub.logger.Debug("client closed connection", "client", c.id)
			} else if ctx.Err() == nil {
				c.hub.logger.Debug("read from client failed", "client", c.id, "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.hub.logger.Debug("ignoring malformed frame", "client", c.id, "error", err)
			continue
		}
		handle(ctx, env)
	}
}
