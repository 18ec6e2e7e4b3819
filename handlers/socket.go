// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/danielhkuo/coin-poll/hub"
	"github.com/danielhkuo/coin-poll/models"
)

// SocketHandler upgrades connections and feeds their commands to a
// CommandHandler.
type SocketHandler struct {
	hub      *hub.Hub
	commands *CommandHandler
	origins  []string
}

// NewSocketHandler accepts websocket handshakes from hosts matching origins
// (path.Match patterns, "*" for any).
func NewSocketHandler(h *hub.Hub, commands *CommandHandler, origins []string) *SocketHandler {
	return &SocketHandler{hub: h, commands: commands, origins: origins}
}

// Serve handles GET /ws
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := hub.NewClient(h.hub, conn)
	h.hub.Register(c)
	slog.Info("client connected", "client", c.ID(), "remote", r.RemoteAddr)

	go c.WritePump(ctx)
	c.ReadPump(ctx, func(ctx context.Context, env models.Envelope) {
		h.commands.Handle(ctx, c, env)
	})

	slog.Info("client disconnected", "client", c.ID())
}
