// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, command payload, and wire types.

# Domain Types

  - Poll: the aggregate (title, status, options, voters, votes)
  - Option: id and display label
  - Voter: stable id, name, coin budget, access code, submitted flag
  - Allocation: option_id -> coins, positive integers only

Poll.Clone produces the deep copy that is broadcast to subscribers, so no
subscriber ever shares maps or slices with the live record.

# Command Payloads

One struct per command, named after it:

  - SetTitleRequest, SetStatusRequest
  - AddOptionRequest, UpdateOptionRequest, DeleteOptionRequest
  - AddVoterRequest, BulkAddVotersRequest, UpdateVoterRequest, DeleteVoterRequest
  - SubmitVoteRequest
  - PollRef, CodeRef for queries

Loosely typed fields (bulk counts, update_voter values, allocations) are kept
as json.RawMessage and coerced by the poll package.

# Wire Types

	Envelope{Type, Ref, Data}   // websocket frames
	Ack{OK, Error}              // submit_vote acknowledgement

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Acknowledgement errors:

	AckErrNotFound = "not found"
	AckErrClosed   = "closed"
*/
package models
