// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/danielhkuo/coin-poll/hub"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/poll"
	"github.com/danielhkuo/coin-poll/store"
	"github.com/danielhkuo/coin-poll/testutil"
)

func startSocketServer(t *testing.T, scope hub.Scope) (*httptest.Server, *hub.Hub) {
	t.Helper()
	h := hub.New(scope, nil)
	svc := poll.NewService(store.New(), h, nil)
	commands := NewCommandHandler(svc, testutil.StartDispatcher(t), nil, nil)
	socket := NewSocketHandler(h, commands, []string{"*"})

	srv := httptest.NewServer(http.HandlerFunc(socket.Serve))
	t.Cleanup(srv.Close)
	return srv, h
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, env models.Envelope) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, env); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var env models.Envelope
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	return env
}

// readUntil skips frames until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) models.Envelope {
	t.Helper()
	for {
		if env := read(t, conn); env.Type == typ {
			return env
		}
	}
}

func TestSocket_RoundTrip(t *testing.T) {
	srv, _ := startSocketServer(t, hub.ScopePoll)
	organizer := dial(t, srv)
	participant := dial(t, srv)

	write(t, organizer, models.Envelope{Type: "create_poll", Ref: "c1"})
	ack := readUntil(t, organizer, models.EnvelopeAck)
	if ack.Ref != "c1" {
		t.Fatalf("expected ref c1, got %q", ack.Ref)
	}
	var p models.Poll
	json.Unmarshal(ack.Data, &p)

	write(t, participant, models.Envelope{Type: "join_poll", Ref: "j1", Data: json.RawMessage(`{"id":"` + p.ID + `"}`)})
	joined := read(t, participant)
	if joined.Type != models.EnvelopeAck || joined.Ref != "j1" {
		t.Fatalf("expected join ack, got %+v", joined)
	}

	write(t, organizer, models.Envelope{Type: "set_title", Data: json.RawMessage(`{"id":"` + p.ID + `","title":"Friday lunch"}`)})

	for _, conn := range []*websocket.Conn{organizer, participant} {
		env := readUntil(t, conn, models.EnvelopePoll)
		var snap models.Poll
		json.Unmarshal(env.Data, &snap)
		for snap.Title != "Friday lunch" {
			json.Unmarshal(readUntil(t, conn, models.EnvelopePoll).Data, &snap)
		}
	}
}

func TestSocket_MalformedFrameKeepsConnection(t *testing.T) {
	srv, _ := startSocketServer(t, hub.ScopePoll)
	conn := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	write(t, conn, models.Envelope{Type: "get_poll", Ref: "g1", Data: json.RawMessage(`{"id":"missing"}`)})
	ack := read(t, conn)
	if ack.Ref != "g1" || string(ack.Data) != "null" {
		t.Errorf("expected null ack for g1, got %+v", ack)
	}
}

func TestSocket_DisconnectUnregisters(t *testing.T) {
	srv, h := startSocketServer(t, hub.ScopePoll)
	conn := dial(t, srv)

	write(t, conn, models.Envelope{Type: "create_poll"})
	read(t, conn)
	if h.Connected() != 1 {
		t.Fatalf("expected 1 connected client, got %d", h.Connected())
	}

	conn.Close(websocket.StatusNormalClosure, "bye")

	deadline := time.Now().Add(2 * time.Second)
	for h.Connected() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected client to be unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
