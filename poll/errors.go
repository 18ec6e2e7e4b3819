// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "errors"

// NotFound
var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option not found")
	ErrVoterNotFound  = errors.New("voter not found")
)

// InvalidState
var (
	ErrInvalidStatus = errors.New("invalid poll status")
	ErrPollClosed    = errors.New("poll is closed")
)

// Ignored
var (
	ErrUnknownField = errors.New("unknown voter field")
	ErrEmptyCode    = errors.New("access code is empty")
)

var ErrDispatcherStopped = errors.New("dispatcher stopped")
