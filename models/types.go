// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "encoding/json"

// Poll status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Voter defaults
const (
	DefaultVoterName  = "Участник"
	DefaultVoterCoins = 10
	DefaultOptionText = "Вариант"
	MaxBulkVoters     = 200
)

// Voter fields accepted by update_voter
const (
	FieldCode      = "code"
	FieldCoins     = "coins"
	FieldName      = "name"
	FieldSubmitted = "submitted"
)

// Acknowledgement error codes for submit_vote
const (
	AckErrNotFound = "not found"
	AckErrClosed   = "closed"
)

// ValidStatus reports whether s is one of the poll lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed:
		return true
	}
	return false
}

// Domain types

// option_id -> coins
type Allocation map[string]int

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Voter struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Coins     int    `json:"coins"`
	Code      string `json:"code"`
	Submitted bool   `json:"submitted"`
}

type Poll struct {
	ID      string                `json:"id"`
	Title   string                `json:"title"`
	Status  string                `json:"status"`
	Options []Option              `json:"options"`
	Voters  []Voter               `json:"voters"`
	Votes   map[string]Allocation `json:"votes"`
}

// NewPoll returns an empty draft poll.
func NewPoll(id string) *Poll {
	return &Poll{
		ID:      id,
		Status:  StatusDraft,
		Options: []Option{},
		Voters:  []Voter{},
		Votes:   map[string]Allocation{},
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (p *Poll) Clone() Poll {
	out := Poll{
		ID:      p.ID,
		Title:   p.Title,
		Status:  p.Status,
		Options: make([]Option, len(p.Options)),
		Voters:  make([]Voter, len(p.Voters)),
		Votes:   make(map[string]Allocation, len(p.Votes)),
	}
	copy(out.Options, p.Options)
	copy(out.Voters, p.Voters)
	for code, alloc := range p.Votes {
		a := make(Allocation, len(alloc))
		for k, v := range alloc {
			a[k] = v
		}
		out.Votes[code] = a
	}
	return out
}

// Command payloads

type PollRef struct {
	ID string `json:"id"`
}

type CodeRef struct {
	Code string `json:"code"`
}

// Free-form fields arrive as json.RawMessage and are coerced by the poll
// service, so a wrong-typed value never rejects the whole command.

type SetTitleRequest struct {
	ID    string          `json:"id"`
	Title json.RawMessage `json:"title"`
}

type SetStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OptionInput is the optional option payload of add_option.
type OptionInput struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Label json.RawMessage `json:"label,omitempty"`
}

// UnmarshalJSON reads anything that is not an object as an empty input.
func (o *OptionInput) UnmarshalJSON(data []byte) error {
	type plain OptionInput
	var in plain
	if err := json.Unmarshal(data, &in); err != nil {
		in = plain{}
	}
	*o = OptionInput(in)
	return nil
}

type AddOptionRequest struct {
	ID  string       `json:"id"`
	Opt *OptionInput `json:"opt,omitempty"`
}

type UpdateOptionRequest struct {
	ID    string          `json:"id"`
	OptID string          `json:"optId"`
	Label json.RawMessage `json:"label"`
}

type DeleteOptionRequest struct {
	ID    string `json:"id"`
	OptID string `json:"optId"`
}

// VoterInput overrides voter defaults in add_voter. Missing fields keep the
// default.
type VoterInput struct {
	Name      json.RawMessage `json:"name,omitempty"`
	Coins     json.RawMessage `json:"coins,omitempty"`
	Code      json.RawMessage `json:"code,omitempty"`
	Submitted json.RawMessage `json:"submitted,omitempty"`
}

// UnmarshalJSON reads anything that is not an object as an empty input.
func (v *VoterInput) UnmarshalJSON(data []byte) error {
	type plain VoterInput
	var in plain
	if err := json.Unmarshal(data, &in); err != nil {
		in = plain{}
	}
	*v = VoterInput(in)
	return nil
}

type AddVoterRequest struct {
	ID    string      `json:"id"`
	Voter *VoterInput `json:"voter,omitempty"`
}

type BulkAddVotersRequest struct {
	ID    string          `json:"id"`
	Count json.RawMessage `json:"count"`
	Coins json.RawMessage `json:"coins"`
}

// VoterRef addresses a voter. VoterID wins over Index when both are set.
// Index accepts numbers and numeric strings.
type VoterRef struct {
	VoterID string          `json:"voterId,omitempty"`
	Index   json.RawMessage `json:"index,omitempty"`
}

type UpdateVoterRequest struct {
	ID string `json:"id"`
	VoterRef
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type DeleteVoterRequest struct {
	ID string `json:"id"`
	VoterRef
}

type SubmitVoteRequest struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Allocations json.RawMessage `json:"allocations"`
}

// Response types

// Ack answers submit_vote.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Envelope is the websocket frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Ref  string          `json:"ref,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Server -> client envelope types
const (
	EnvelopeAck  = "ack"
	EnvelopePoll = "poll"
)

type AddressesResponse struct {
	Addresses []string `json:"addresses"`
	Port      int      `json:"port"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
