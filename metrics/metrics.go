// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command outcomes
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	Commands         *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	VotesSubmitted   *prometheus.CounterVec
	Broadcasts       *prometheus.CounterVec
	ConnectedClients prometheus.Gauge
	Polls            prometheus.Gauge
}

// New registers all collectors with reg. Pass prometheus.NewRegistry() in
// tests so collectors don't collide.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Commands handled, by command name and outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Time from dispatch to completion of a command",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
			[]string{"command"},
		),
		VotesSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_submitted_total",
				Help:      "Vote submissions, by acknowledgement result",
			},
			[]string{"result"},
		),
		Broadcasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Poll snapshots handed to a delivery sink",
			},
			[]string{"sink", "outcome"},
		),
		ConnectedClients: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connected_clients",
				Help:      "Open websocket connections",
			},
		),
		Polls: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "polls",
				Help:      "Polls held in memory",
			},
		),
	}
}
