// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/coin-poll/auth"
	"github.com/danielhkuo/coin-poll/models"
)

var (
	ErrCodeTaken = errors.New("access code already registered")
	ErrEmptyCode = errors.New("access code is empty")
)

// Store owns every poll and the global access-code index.
// It is not safe for concurrent use; callers serialize access
// through a single goroutine (see poll.Dispatcher).
type Store struct {
	polls map[string]*models.Poll
	codes map[string]string // code -> poll_id
}

func New() *Store {
	return &Store{
		polls: make(map[string]*models.Poll),
		codes: make(map[string]string),
	}
}

// Create inserts an empty draft poll under a fresh ID.
func (s *Store) Create() (*models.Poll, error) {
	id, err := auth.NewPollID()
	if err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}
	p := models.NewPoll(id)
	s.polls[id] = p
	return p, nil
}

func (s *Store) Get(id string) (*models.Poll, bool) {
	p, ok := s.polls[id]
	return p, ok
}

// FindByCode resolves a code case-insensitively. A code whose poll is gone
// resolves to nothing.
func (s *Store) FindByCode(code string) (*models.Poll, bool) {
	pollID, ok := s.codes[auth.NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	return s.Get(pollID)
}

func (s *Store) CodeTaken(code string) bool {
	_, ok := s.codes[auth.NormalizeCode(code)]
	return ok
}

func (s *Store) RegisterCode(code, pollID string) error {
	code = auth.NormalizeCode(code)
	if code == "" {
		return ErrEmptyCode
	}
	if owner, ok := s.codes[code]; ok {
		return fmt.Errorf("%w: %s (poll %s)", ErrCodeTaken, code, owner)
	}
	s.codes[code] = pollID
	return nil
}

func (s *Store) ReleaseCode(code string) {
	delete(s.codes, auth.NormalizeCode(code))
}

// Len returns the number of polls.
func (s *Store) Len() int {
	return len(s.polls)
}
