// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/danielhkuo/coin-poll/auth"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/store"
)

// Notifier delivers a poll snapshot to everyone watching that poll.
type Notifier interface {
	Notify(pollID string, snapshot models.Poll)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(pollID string, snapshot models.Poll)

func (f NotifierFunc) Notify(pollID string, snapshot models.Poll) { f(pollID, snapshot) }

// Service applies commands to polls held in a store.Store.
//
// Every method that changes a poll notifies once, after the change is fully
// applied. Methods that return an error changed nothing and notified nobody.
// Service is not safe for concurrent use: run it behind a Dispatcher.
type Service struct {
	store    *store.Store
	notifier Notifier
	logger   *slog.Logger
}

func NewService(s *store.Store, n Notifier, logger *slog.Logger) *Service {
	if n == nil {
		n = NotifierFunc(func(string, models.Poll) {})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, notifier: n, logger: logger}
}

func (s *Service) broadcast(p *models.Poll) {
	s.notifier.Notify(p.ID, p.Clone())
}

func (s *Service) poll(id string) (*models.Poll, error) {
	p, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPollNotFound, id)
	}
	return p, nil
}

// PollCount returns the number of polls in memory.
func (s *Service) PollCount() int {
	return s.store.Len()
}

// CreatePoll inserts an empty draft poll.
func (s *Service) CreatePoll() (models.Poll, error) {
	p, err := s.store.Create()
	if err != nil {
		return models.Poll{}, err
	}
	s.logger.Info("poll created", "poll_id", p.ID)
	s.broadcast(p)
	return p.Clone(), nil
}

// GetPoll returns a snapshot of the poll.
func (s *Service) GetPoll(id string) (models.Poll, bool) {
	p, ok := s.store.Get(id)
	if !ok {
		return models.Poll{}, false
	}
	return p.Clone(), true
}

// GetPollByCode returns a snapshot of the poll that owns the access code.
func (s *Service) GetPollByCode(code string) (models.Poll, bool) {
	p, ok := s.store.FindByCode(code)
	if !ok {
		return models.Poll{}, false
	}
	return p.Clone(), true
}

// SetTitle replaces the title with the text of title, or empty when it is
// falsy.
func (s *Service) SetTitle(id string, title json.RawMessage) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	p.Title = ""
	if truthy(title) {
		p.Title = toText(title)
	}
	s.broadcast(p)
	return nil
}

func (s *Service) SetStatus(id, status string) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	p.Status = status
	s.logger.Info("poll status changed", "poll_id", id, "status", status)
	s.broadcast(p)
	return nil
}

func (s *Service) hasOption(p *models.Poll, optID string) bool {
	for _, o := range p.Options {
		if o.ID == optID {
			return true
		}
	}
	return false
}

func (s *Service) newOptionID(p *models.Poll) (string, error) {
	for {
		id, err := auth.GenerateID(4)
		if err != nil {
			return "", err
		}
		if !s.hasOption(p, id) {
			return id, nil
		}
	}
}

// AddOption appends an option. A missing or duplicate id is replaced with a
// fresh one; a missing label becomes the placeholder text.
func (s *Service) AddOption(id string, in *models.OptionInput) (models.Option, error) {
	p, err := s.poll(id)
	if err != nil {
		return models.Option{}, err
	}

	var opt models.Option
	if in != nil {
		opt = models.Option{ID: toText(in.ID), Label: toText(in.Label)}
	}
	if opt.ID == "" || s.hasOption(p, opt.ID) {
		if opt.ID, err = s.newOptionID(p); err != nil {
			return models.Option{}, err
		}
	}
	if opt.Label == "" {
		opt.Label = models.DefaultOptionText
	}

	p.Options = append(p.Options, opt)
	s.broadcast(p)
	return opt, nil
}

func (s *Service) UpdateOption(id, optID string, label json.RawMessage) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	for i := range p.Options {
		if p.Options[i].ID == optID {
			p.Options[i].Label = toText(label)
			s.broadcast(p)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrOptionNotFound, optID)
}

// DeleteOption removes the option and purges it from every allocation.
func (s *Service) DeleteOption(id, optID string) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}

	kept := p.Options[:0]
	for _, o := range p.Options {
		if o.ID != optID {
			kept = append(kept, o)
		}
	}
	p.Options = kept

	for _, alloc := range p.Votes {
		delete(alloc, optID)
	}

	s.broadcast(p)
	return nil
}

// ClearOptions removes every option. Votes keep their codes with empty
// allocations.
func (s *Service) ClearOptions(id string) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	p.Options = []models.Option{}
	for code := range p.Votes {
		p.Votes[code] = models.Allocation{}
	}
	s.broadcast(p)
	return nil
}

// newVoter resolves a unique code for v and registers it.
func (s *Service) newVoter(p *models.Poll, v models.Voter) (models.Voter, error) {
	code, err := auth.NewVoterCode(v.Code, s.store.CodeTaken)
	if err != nil {
		return models.Voter{}, err
	}
	if err := s.store.RegisterCode(code, p.ID); err != nil {
		return models.Voter{}, err
	}
	v.ID = auth.NewVoterID()
	v.Code = code
	return v, nil
}

func (s *Service) AddVoter(id string, in *models.VoterInput) (models.Voter, error) {
	p, err := s.poll(id)
	if err != nil {
		return models.Voter{}, err
	}

	v := models.Voter{Name: models.DefaultVoterName, Coins: models.DefaultVoterCoins}
	if in != nil {
		if truthy(in.Name) {
			v.Name = toText(in.Name)
		}
		if present(in.Coins) {
			// non-numeric budgets become zero
			n, _ := toNumber(in.Coins)
			v.Coins = max(floorInt(n), 0)
		}
		v.Code = toText(in.Code)
		v.Submitted = truthy(in.Submitted)
	}

	v, err = s.newVoter(p, v)
	if err != nil {
		return models.Voter{}, err
	}
	p.Voters = append(p.Voters, v)
	s.broadcast(p)
	return v, nil
}

// BulkAddVoters appends count voters (clamped to [1, MaxBulkVoters]) with the
// given coin budget (default DefaultVoterCoins, never negative).
func (s *Service) BulkAddVoters(id string, count, coins json.RawMessage) (int, error) {
	p, err := s.poll(id)
	if err != nil {
		return 0, err
	}

	n := 1
	if f, ok := toNumber(count); ok {
		n = floorInt(f)
	}
	n = min(max(n, 1), models.MaxBulkVoters)

	budget := models.DefaultVoterCoins
	if f, ok := toNumber(coins); ok {
		budget = max(floorInt(f), 0)
	}

	added := 0
	for i := 0; i < n; i++ {
		v, err := s.newVoter(p, models.Voter{
			Name:  models.DefaultVoterName + " " + strconv.Itoa(len(p.Voters)+1),
			Coins: budget,
		})
		if err != nil {
			s.logger.Error("failed to add voter", "poll_id", id, "error", err)
			break
		}
		p.Voters = append(p.Voters, v)
		added++
	}

	if added > 0 {
		s.broadcast(p)
	}
	return added, nil
}

// voterIndex resolves a reference to a position in p.Voters.
// VoterID wins over Index.
func voterIndex(p *models.Poll, ref models.VoterRef) (int, error) {
	if ref.VoterID != "" {
		for i, v := range p.Voters {
			if v.ID == ref.VoterID {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: id %s", ErrVoterNotFound, ref.VoterID)
	}
	n, ok := toNumber(ref.Index)
	if !ok || n != math.Trunc(n) || n < 0 || n >= float64(len(p.Voters)) {
		return -1, ErrVoterNotFound
	}
	return int(n), nil
}

// UpdateVoter changes one field of one voter. Changing the code releases the
// old code before the new one is resolved and registered.
func (s *Service) UpdateVoter(id string, ref models.VoterRef, field string, value json.RawMessage) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	i, err := voterIndex(p, ref)
	if err != nil {
		return err
	}
	v := &p.Voters[i]

	switch field {
	case models.FieldCode:
		old := v.Code
		s.store.ReleaseCode(old)
		code, err := auth.NewVoterCode(toText(value), s.store.CodeTaken)
		if err == nil {
			err = s.store.RegisterCode(code, p.ID)
		}
		if err != nil {
			// put the old code back so the voter is never left without one
			if rerr := s.store.RegisterCode(old, p.ID); rerr != nil {
				s.logger.Error("failed to restore voter code", "poll_id", id, "code", old, "error", rerr)
			}
			return err
		}
		v.Code = code
		// the voter's allocation follows its code
		if alloc, ok := p.Votes[old]; ok && code != old {
			delete(p.Votes, old)
			p.Votes[code] = alloc
		}
	case models.FieldCoins:
		n, _ := toNumber(value)
		v.Coins = max(floorInt(n), 0)
	case models.FieldName:
		v.Name = toText(value)
	case models.FieldSubmitted:
		v.Submitted = truthy(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	s.broadcast(p)
	return nil
}

// DeleteVoter removes the voter, releases its code and drops the allocation
// stored under it, so a later voter given the same code starts clean.
func (s *Service) DeleteVoter(id string, ref models.VoterRef) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	i, err := voterIndex(p, ref)
	if err != nil {
		return err
	}
	code := p.Voters[i].Code
	s.store.ReleaseCode(code)
	delete(p.Votes, code)
	p.Voters = append(p.Voters[:i], p.Voters[i+1:]...)
	s.broadcast(p)
	return nil
}

// ResetSubmits drops every vote and clears every submitted flag.
func (s *Service) ResetSubmits(id string) error {
	p, err := s.poll(id)
	if err != nil {
		return err
	}
	p.Votes = map[string]models.Allocation{}
	for i := range p.Voters {
		p.Voters[i].Submitted = false
	}
	s.broadcast(p)
	return nil
}

// SubmitVote stores the sanitized allocation under the canonical code,
// replacing any earlier one, and marks the matching voter as submitted.
// Unknown codes still record their allocation.
//
// Entries for options the poll does not have at submit time are dropped.
// Options deleted later are purged from stored votes by DeleteOption, which
// is what keeps every allocation pointing at an existing option.
func (s *Service) SubmitVote(id, code string, allocations json.RawMessage) (models.Ack, error) {
	p, err := s.poll(id)
	if err != nil {
		return models.Ack{OK: false, Error: models.AckErrNotFound}, err
	}
	if p.Status == models.StatusClosed {
		return models.Ack{OK: false, Error: models.AckErrClosed}, ErrPollClosed
	}
	code = auth.NormalizeCode(code)
	if code == "" {
		return models.Ack{OK: false, Error: models.AckErrNotFound}, ErrEmptyCode
	}

	alloc := Sanitize(allocations)
	for optID := range alloc {
		if !s.hasOption(p, optID) {
			delete(alloc, optID)
		}
	}
	p.Votes[code] = alloc
	for i := range p.Voters {
		if p.Voters[i].Code == code {
			p.Voters[i].Submitted = true
		}
	}

	s.logger.Info("vote submitted", "poll_id", id, "code", code)
	s.broadcast(p)
	return models.Ack{OK: true}, nil
}
