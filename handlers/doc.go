// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the websocket and HTTP handlers for the coin poll
server.

# Handler Types

  - CommandHandler: websocket commands mapped to poll.Service calls
  - SocketHandler: GET /ws, one read loop and one write loop per client
  - PollHandler: read-only snapshots (GET /polls/{id}, GET /codes/{code})
  - NetworkHandler: LAN addresses to share with participants

Every service call goes through poll.Dispatcher, so commands from all
clients are applied one at a time.

# Commands

Each frame is {"type", "ref", "data"}. Acknowledged commands answer with
{"type":"ack","ref":<same ref>,"data":...}:

	create_poll       → Poll (creator joins the poll's room)
	join_poll {id}    → Poll | null
	get_poll {id}     → Poll | null
	get_poll_by_code  → Poll | null
	submit_vote       → {"ok":true} | {"ok":false,"error":"not found"|"closed"}

Every other command (set_title, set_status, add_option, update_option,
delete_option, clear_options, add_voter, bulk_add_voters, update_voter,
delete_voter, reset_submits) answers only through the {"type":"poll"}
broadcast. A command that changes nothing broadcasts nothing.

update_voter and delete_voter address a voter by "voterId" when present,
otherwise by "index".
*/
package handlers
