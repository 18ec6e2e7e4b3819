// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll is the poll state machine.

# Operations

Service applies one command to one poll:

	CreatePoll, GetPoll, GetPollByCode
	SetTitle, SetStatus
	AddOption, UpdateOption, DeleteOption, ClearOptions
	AddVoter, BulkAddVoters, UpdateVoter, DeleteVoter
	ResetSubmits, SubmitVote

A successful mutation ends with exactly one call to the Notifier carrying a
deep copy of the poll. A failed lookup, an invalid status, an unknown voter
field or a vote on a closed poll returns an error and notifies nobody.

# Invariants

  - Deleting an option deletes that option id from every stored allocation.
  - Access codes are unique across all polls (store.Store reverse index).
  - Votes are keyed by the upper-cased code.
  - Stored allocation amounts are positive integers (see Sanitize).

# Sanitizing Allocations

	alloc := poll.Sanitize(raw)

Values are coerced, floored, and dropped unless strictly positive. Option ids
are not checked against the poll's options; deletion keeps votes consistent.

# Voter Addressing

Voters carry a stable id. UpdateVoter and DeleteVoter take a VoterRef: when
VoterID is set it is used, otherwise the legacy positional Index.

# Dispatch

Service is single-threaded by contract. Dispatcher owns one goroutine that
runs jobs in arrival order:

	d := poll.NewDispatcher(256)
	go d.Run(ctx)
	err := d.Do(ctx, func() { ack, _ = svc.SubmitVote(id, code, raw) })

Each job, including the broadcast it triggers, finishes before the next one
starts, so subscribers never see a half-applied command.
*/
package poll
