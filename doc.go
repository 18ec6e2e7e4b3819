// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the coin poll server.

An organizer edits a poll's options and voter roster while participants,
each holding an access code and a coin budget, spread their coins across
the options. Every change is pushed to every viewer of the poll over a
websocket as a full snapshot.

# Starting the Server

Nothing is required:

	go run .

Or with flags:

	go run . -p 3318 -scope poll -log-level debug

# Configuration

See package cliparse. Optional mirrors:

  - KAFKA_BROKERS (-kafka-brokers): publish every snapshot to Kafka
  - REDIS_URL (-redis-url): PUBLISH every snapshot to poll:<id>

# Architecture

  - poll: state machine (Service) and the single-goroutine Dispatcher
  - store: in-memory polls and the global access-code index
  - hub: websocket clients and per-poll rooms
  - notify: fan-out of snapshots to the hub and optional sinks
  - handlers: websocket commands, REST snapshots, network addresses
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Poll types and wire payloads
  - auth: identifiers and access codes
  - metrics: Prometheus collectors
  - cliparse: Configuration parsing

Polls live in memory only; a restart starts empty.
*/
package main
