// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub fans poll snapshots out to websocket clients.

# Rooms

Each client joins at most one poll room. Joining another poll moves it.

	h := hub.New(hub.ScopePoll, logger)
	c := hub.NewClient(h, conn)
	h.Register(c)
	c.Join(pollID)

# Scope

Hub implements poll.Notifier. The scope is chosen at construction:

  - ScopePoll: a snapshot goes to the members of that poll's room
  - ScopeGlobal: every snapshot goes to every connected client

# Backpressure

Notify never blocks the caller. Frames are queued on a per-client buffer and
written by the client's WritePump; a client whose buffer is full is
unregistered and its connection closed. A reconnecting client re-joins and
receives a fresh snapshot, so nothing is lost for good.
*/
package hub
