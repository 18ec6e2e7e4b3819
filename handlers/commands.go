// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/coin-poll/metrics"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/poll"
	"github.com/danielhkuo/coin-poll/store"
)

// Session is the connection a command arrived on.
type Session interface {
	// Join subscribes the session to broadcasts for pollID.
	Join(pollID string)
	// Send delivers an envelope to this session only.
	Send(env models.Envelope)
}

var errBadPayload = errors.New("malformed payload")

type command func(h *CommandHandler, sess Session, env models.Envelope) error

var commands = map[string]command{
	"create_poll":      (*CommandHandler).createPoll,
	"join_poll":        (*CommandHandler).joinPoll,
	"get_poll":         (*CommandHandler).getPoll,
	"get_poll_by_code": (*CommandHandler).getPollByCode,
	"set_title":        (*CommandHandler).setTitle,
	"set_status":       (*CommandHandler).setStatus,
	"add_option":       (*CommandHandler).addOption,
	"update_option":    (*CommandHandler).updateOption,
	"delete_option":    (*CommandHandler).deleteOption,
	"clear_options":    (*CommandHandler).clearOptions,
	"add_voter":        (*CommandHandler).addVoter,
	"bulk_add_voters":  (*CommandHandler).bulkAddVoters,
	"update_voter":     (*CommandHandler).updateVoter,
	"delete_voter":     (*CommandHandler).deleteVoter,
	"reset_submits":    (*CommandHandler).resetSubmits,
	"submit_vote":      (*CommandHandler).submitVote,
}

// CommandHandler maps websocket commands to poll.Service calls.
//
// The whole command, acknowledgement included, runs as one dispatcher job,
// so a session sees its ack and every broadcast in the order the commands
// were applied.
type CommandHandler struct {
	svc        *poll.Service
	dispatcher *poll.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewCommandHandler(svc *poll.Service, d *poll.Dispatcher, m *metrics.Metrics, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{svc: svc, dispatcher: d, metrics: m, logger: logger}
}

// Handle applies one command. Unknown command types are logged and ignored.
func (h *CommandHandler) Handle(ctx context.Context, sess Session, env models.Envelope) {
	cmd, ok := commands[env.Type]
	if !ok {
		h.logger.Warn("ignoring unknown command", "type", env.Type)
		h.count("unknown", metrics.OutcomeIgnored)
		return
	}

	start := time.Now()
	var cmdErr error
	err := h.dispatcher.Do(ctx, func() {
		cmdErr = cmd(h, sess, env)
	})
	if err != nil {
		h.logger.Warn("command not dispatched", "type", env.Type, "error", err)
		h.count(env.Type, metrics.OutcomeFailed)
		return
	}

	if h.metrics != nil {
		h.metrics.CommandDuration.WithLabelValues(env.Type).Observe(time.Since(start).Seconds())
	}
	switch {
	case cmdErr == nil:
		h.count(env.Type, metrics.OutcomeApplied)
	case expected(cmdErr):
		h.logger.Debug("command ignored", "type", env.Type, "error", cmdErr)
		h.count(env.Type, metrics.OutcomeIgnored)
	default:
		h.logger.Error("command failed", "type", env.Type, "error", cmdErr)
		h.count(env.Type, metrics.OutcomeFailed)
	}
}

// expected reports whether err is a bad-input outcome rather than a fault.
func expected(err error) bool {
	for _, target := range []error{
		errBadPayload,
		poll.ErrPollNotFound,
		poll.ErrOptionNotFound,
		poll.ErrVoterNotFound,
		poll.ErrInvalidStatus,
		poll.ErrPollClosed,
		poll.ErrUnknownField,
		poll.ErrEmptyCode,
		store.ErrCodeTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *CommandHandler) count(command, outcome string) {
	if h.metrics != nil {
		h.metrics.Commands.WithLabelValues(command, outcome).Inc()
	}
}

func decode(env models.Envelope, v any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errBadPayload, env.Type, err)
	}
	return nil
}

func (h *CommandHandler) ack(sess Session, env models.Envelope, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode ack", "type", env.Type, "error", err)
		return
	}
	sess.Send(models.Envelope{Type: models.EnvelopeAck, Ref: env.Ref, Data: data})
}

// ackPoll acknowledges with the snapshot, or null when ok is false.
func (h *CommandHandler) ackPoll(sess Session, env models.Envelope, p models.Poll, ok bool) {
	if !ok {
		h.ack(sess, env, nil)
		return
	}
	h.ack(sess, env, p)
}

func (h *CommandHandler) createPoll(sess Session, env models.Envelope) error {
	p, err := h.svc.CreatePoll()
	if err != nil {
		h.ack(sess, env, nil)
		return err
	}
	if h.metrics != nil {
		h.metrics.Polls.Set(float64(h.svc.PollCount()))
	}
	sess.Join(p.ID)
	h.ack(sess, env, p)
	return nil
}

func (h *CommandHandler) joinPoll(sess Session, env models.Envelope) error {
	var req models.PollRef
	if err := decode(env, &req); err != nil {
		h.ack(sess, env, nil)
		return err
	}
	p, ok := h.svc.GetPoll(req.ID)
	if ok {
		sess.Join(p.ID)
	}
	h.ackPoll(sess, env, p, ok)
	if !ok {
		return fmt.Errorf("%w: %s", poll.ErrPollNotFound, req.ID)
	}
	return nil
}

func (h *CommandHandler) getPoll(sess Session, env models.Envelope) error {
	var req models.PollRef
	if err := decode(env, &req); err != nil {
		h.ack(sess, env, nil)
		return err
	}
	p, ok := h.svc.GetPoll(req.ID)
	h.ackPoll(sess, env, p, ok)
	return nil
}

func (h *CommandHandler) getPollByCode(sess Session, env models.Envelope) error {
	var req models.CodeRef
	if err := decode(env, &req); err != nil {
		h.ack(sess, env, nil)
		return err
	}
	p, ok := h.svc.GetPollByCode(req.Code)
	h.ackPoll(sess, env, p, ok)
	return nil
}

func (h *CommandHandler) setTitle(_ Session, env models.Envelope) error {
	var req models.SetTitleRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.SetTitle(req.ID, req.Title)
}

func (h *CommandHandler) setStatus(_ Session, env models.Envelope) error {
	var req models.SetStatusRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.SetStatus(req.ID, req.Status)
}

func (h *CommandHandler) addOption(_ Session, env models.Envelope) error {
	var req models.AddOptionRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	_, err := h.svc.AddOption(req.ID, req.Opt)
	return err
}

func (h *CommandHandler) updateOption(_ Session, env models.Envelope) error {
	var req models.UpdateOptionRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.UpdateOption(req.ID, req.OptID, req.Label)
}

func (h *CommandHandler) deleteOption(_ Session, env models.Envelope) error {
	var req models.DeleteOptionRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.DeleteOption(req.ID, req.OptID)
}

func (h *CommandHandler) clearOptions(_ Session, env models.Envelope) error {
	var req models.PollRef
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.ClearOptions(req.ID)
}

func (h *CommandHandler) addVoter(_ Session, env models.Envelope) error {
	var req models.AddVoterRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	_, err := h.svc.AddVoter(req.ID, req.Voter)
	return err
}

func (h *CommandHandler) bulkAddVoters(_ Session, env models.Envelope) error {
	var req models.BulkAddVotersRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	n, err := h.svc.BulkAddVoters(req.ID, req.Count, req.Coins)
	if err != nil {
		return err
	}
	h.logger.Info("voters added", "poll_id", req.ID, "count", n)
	return nil
}

func (h *CommandHandler) updateVoter(_ Session, env models.Envelope) error {
	var req models.UpdateVoterRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.UpdateVoter(req.ID, req.VoterRef, req.Field, req.Value)
}

func (h *CommandHandler) deleteVoter(_ Session, env models.Envelope) error {
	var req models.DeleteVoterRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.DeleteVoter(req.ID, req.VoterRef)
}

func (h *CommandHandler) resetSubmits(_ Session, env models.Envelope) error {
	var req models.PollRef
	if err := decode(env, &req); err != nil {
		return err
	}
	return h.svc.ResetSubmits(req.ID)
}

func (h *CommandHandler) submitVote(sess Session, env models.Envelope) error {
	var req models.SubmitVoteRequest
	if err := decode(env, &req); err != nil {
		h.ack(sess, env, models.Ack{OK: false, Error: models.AckErrNotFound})
		h.countVote(models.AckErrNotFound)
		return err
	}
	ack, err := h.svc.SubmitVote(req.ID, req.Code, req.Allocations)
	h.ack(sess, env, ack)
	if ack.OK {
		h.countVote("ok")
	} else {
		h.countVote(ack.Error)
	}
	return err
}

func (h *CommandHandler) countVote(result string) {
	if h.metrics != nil {
		h.metrics.VotesSubmitted.WithLabelValues(result).Inc()
	}
}
