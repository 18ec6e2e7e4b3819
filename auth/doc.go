// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth generates identifiers and voter access codes.

Trust in a coin poll is code-based only: whoever knows a voter's access code
may vote as that voter. There are no passwords or admin keys.

# Poll IDs

Poll IDs are UUIDv7 strings, combining a millisecond timestamp with random
bits, so collisions are negligible without a retry loop:

	id, err := auth.NewPollID()

# Option and Voter IDs

	optID, err := auth.GenerateID(8)  // 16 hex characters
	voterID := auth.NewVoterID()      // random UUID, stable for the voter's lifetime

# Access Codes

Codes are six characters from an alphabet without look-alike glyphs
(no 0/O, 1/I/L) and always upper-case:

	code, err := auth.NewVoterCode(preferred, store.CodeTaken)

A preferred code is honored unless already taken. Otherwise random codes are
drawn until the taken func reports a free one, so uniqueness holds even if
the random source collides.

NormalizeCode is the single place that defines the canonical case of a code;
every lookup and registration goes through it.
*/
package auth
