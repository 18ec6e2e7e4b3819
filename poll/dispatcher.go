// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"log/slog"
)

// Dispatcher runs submitted jobs one at a time, in arrival order, on a single
// goroutine. Everything that touches a Service goes through it.
type Dispatcher struct {
	jobs    chan func()
	stopped chan struct{}
}

func NewDispatcher(buffer int) *Dispatcher {
	return &Dispatcher{
		jobs:    make(chan func(), buffer),
		stopped: make(chan struct{}),
	}
}

// Run executes jobs until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.stopped)
	slog.Info("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopped")
			return nil
		case job := <-d.jobs:
			runJob(job)
		}
	}
}

// runJob keeps one failing command from taking the dispatcher down.
func runJob(job func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("command panicked", "panic", r)
		}
	}()
	job()
}

// Do runs fn on the dispatch goroutine and waits for it to finish.
// If ctx ends first, Do returns ctx.Err(); fn may still run later.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case d.jobs <- job:
	case <-d.stopped:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-d.stopped:
		// Run may have exited between our send and the job starting
		select {
		case <-done:
			return nil
		default:
			return ErrDispatcherStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
