// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the in-memory poll repository.

It holds two maps that never leave the package:

	polls: poll_id -> *Poll
	codes: CODE    -> poll_id   (global reverse index)

Codes are unique across all polls. RegisterCode refuses a code that is
already mapped, so callers release the old code before registering a new one.
All code arguments are normalized with auth.NormalizeCode.

FindByCode chains the reverse index into the poll map and reports absence if
either side is missing, so a dangling index entry never panics.

Nothing is persisted; state lives for the lifetime of the process.
*/
package store
