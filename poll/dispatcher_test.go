// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/store"
)

func startDispatcher(t *testing.T) (*Dispatcher, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(16)
	go d.Run(ctx)
	t.Cleanup(cancel)
	return d, cancel
}

func TestDispatcher_RunsInOrder(t *testing.T) {
	d, _ := startDispatcher(t)

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		if err := d.Do(context.Background(), func() { got = append(got, i) }); err != nil {
			t.Fatal(err)
		}
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran as %d", i, v)
		}
	}
}

// TestDispatcher_ConcurrentVotes verifies that simultaneous submissions from
// different voters are serialized without losing any of them
func TestDispatcher_ConcurrentVotes(t *testing.T) {
	d, _ := startDispatcher(t)
	rec := &recorder{}
	svc := NewService(store.New(), rec, nil)

	var id string
	d.Do(context.Background(), func() {
		p, _ := svc.CreatePoll()
		id = p.ID
		svc.AddOption(id, &models.OptionInput{ID: raw(`"o1"`), Label: raw(`"A"`)})
		svc.BulkAddVoters(id, raw(`20`), raw(`10`))
		svc.SetStatus(id, models.StatusOpen)
	})

	var snapshot models.Poll
	d.Do(context.Background(), func() { snapshot, _ = svc.GetPoll(id) })

	var wg sync.WaitGroup
	for _, v := range snapshot.Voters {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			err := d.Do(context.Background(), func() {
				svc.SubmitVote(id, code, raw(`{"o1": 2}`))
			})
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
		}(v.Code)
	}
	wg.Wait()

	var final models.Poll
	d.Do(context.Background(), func() { final, _ = svc.GetPoll(id) })

	if len(final.Votes) != 20 {
		t.Errorf("expected 20 votes, got %d", len(final.Votes))
	}
	for _, v := range final.Voters {
		if !v.Submitted {
			t.Errorf("voter %s not marked submitted", v.Code)
		}
	}
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	d, _ := startDispatcher(t)

	if err := d.Do(context.Background(), func() { panic("boom") }); err != nil {
		t.Fatalf("expected panicking job to complete, got %v", err)
	}

	ran := false
	if err := d.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("dispatcher must keep running after a panic")
	}
}

func TestDispatcher_Stopped(t *testing.T) {
	d, cancel := startDispatcher(t)
	cancel()

	deadline := time.After(time.Second)
	for {
		err := d.Do(context.Background(), func() {})
		if errors.Is(err, ErrDispatcherStopped) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected ErrDispatcherStopped, got %v", err)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDispatcher_ContextCancelled(t *testing.T) {
	d := NewDispatcher(0) // never started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := d.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
