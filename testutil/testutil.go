// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/coin-poll/cliparse"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/poll"
	"github.com/danielhkuo/coin-poll/store"
)

// Recorder is a poll.Notifier that keeps every snapshot it is handed.
type Recorder struct {
	mu    sync.Mutex
	snaps []models.Poll
}

func (r *Recorder) Notify(_ string, snapshot models.Poll) {
	r.mu.Lock()
	r.snaps = append(r.snaps, snapshot)
	r.mu.Unlock()
}

// Count returns the number of snapshots received so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// Last returns the most recent snapshot.
func (r *Recorder) Last() (models.Poll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return models.Poll{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

// StartDispatcher runs a dispatcher until the test ends.
func StartDispatcher(t *testing.T) *poll.Dispatcher {
	t.Helper()
	d := poll.NewDispatcher(16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

// NewService returns a service over an empty store, notifying n.
func NewService(t *testing.T, n poll.Notifier) *poll.Service {
	t.Helper()
	return poll.NewService(store.New(), n, nil)
}

// CreateTestPoll creates a poll with the given status and returns a snapshot.
// Call it before the service is shared with a running dispatcher.
func CreateTestPoll(t *testing.T, svc *poll.Service, status string) models.Poll {
	t.Helper()
	p, err := svc.CreatePoll()
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	if status != models.StatusDraft {
		if err := svc.SetStatus(p.ID, status); err != nil {
			t.Fatalf("Failed to set test poll status: %v", err)
		}
	}
	p, _ = svc.GetPoll(p.ID)
	return p
}

// AddTestOption adds an option to a poll and returns its ID
func AddTestOption(t *testing.T, svc *poll.Service, pollID, label string) string {
	t.Helper()
	opt, err := svc.AddOption(pollID, &models.OptionInput{Label: rawString(label)})
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
	return opt.ID
}

// AddTestVoter adds a voter with the preferred code and returns it
func AddTestVoter(t *testing.T, svc *poll.Service, pollID, code string) models.Voter {
	t.Helper()
	v, err := svc.AddVoter(pollID, &models.VoterInput{Code: rawString(code)})
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return v
}

func rawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           cliparse.DefaultPort,
		BroadcastScope: "poll",
		KafkaTopic:     cliparse.DefaultKafkaTopic,
		LogFormat:      "text",
		AllowedOrigins: []string{"*"},
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
