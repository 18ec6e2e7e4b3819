// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/danielhkuo/coin-poll/metrics"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/poll"
)

// Sink publishes an encoded poll snapshot somewhere outside the process.
type Sink interface {
	Publish(ctx context.Context, pollID string, payload []byte) error
	Close() error
}

// Multi notifies every notifier in order.
type Multi []poll.Notifier

func (m Multi) Notify(pollID string, snapshot models.Poll) {
	for _, n := range m {
		n.Notify(pollID, snapshot)
	}
}

// Counted records every delivery to the wrapped notifier under a sink label.
type Counted struct {
	Name    string
	Next    poll.Notifier
	Metrics *metrics.Metrics
}

func (c Counted) Notify(pollID string, snapshot models.Poll) {
	c.Next.Notify(pollID, snapshot)
	if c.Metrics != nil {
		c.Metrics.Broadcasts.WithLabelValues(c.Name, metrics.OutcomeApplied).Inc()
	}
}

type message struct {
	pollID  string
	payload []byte
}

const publishTimeout = 5 * time.Second

// Async decouples a slow Sink from the dispatcher. Notify encodes the
// snapshot and queues it; Run publishes queued snapshots in order. When the
// queue is full the snapshot is dropped; the next one supersedes it anyway.
type Async struct {
	name    string
	sink    Sink
	queue   chan message
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAsync(name string, sink Sink, buffer int, m *metrics.Metrics, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{
		name:    name,
		sink:    sink,
		queue:   make(chan message, buffer),
		metrics: m,
		logger:  logger,
	}
}

func (a *Async) count(outcome string) {
	if a.metrics != nil {
		a.metrics.Broadcasts.WithLabelValues(a.name, outcome).Inc()
	}
}

func (a *Async) Notify(pollID string, snapshot models.Poll) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		a.logger.Error("failed to encode snapshot", "sink", a.name, "poll_id", pollID, "error", err)
		a.count(metrics.OutcomeFailed)
		return
	}
	select {
	case a.queue <- message{pollID: pollID, payload: payload}:
	default:
		a.logger.Warn("sink queue full, dropping snapshot", "sink", a.name, "poll_id", pollID)
		a.count(metrics.OutcomeIgnored)
	}
}

// Run publishes until ctx ends, then closes the sink.
func (a *Async) Run(ctx context.Context) error {
	defer func() {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn("failed to close sink", "sink", a.name, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-a.queue:
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := a.sink.Publish(pctx, msg.pollID, msg.payload)
			cancel()
			if err != nil {
				a.logger.Error("failed to publish snapshot", "sink", a.name, "poll_id", msg.pollID, "error", err)
				a.count(metrics.OutcomeFailed)
				continue
			}
			a.count(metrics.OutcomeApplied)
		}
	}
}
