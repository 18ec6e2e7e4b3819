// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/coin-poll/middleware"
	"github.com/danielhkuo/coin-poll/models"
	"github.com/danielhkuo/coin-poll/poll"
)

// PollHandler serves read-only poll snapshots over HTTP.
type PollHandler struct {
	svc        *poll.Service
	dispatcher *poll.Dispatcher
}

func NewPollHandler(svc *poll.Service, d *poll.Dispatcher) *PollHandler {
	return &PollHandler{svc: svc, dispatcher: d}
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var (
		p     models.Poll
		found bool
	)
	err := h.dispatcher.Do(r.Context(), func() {
		p, found = h.svc.GetPoll(pollID)
	})
	if err != nil {
		slog.Error("failed to read poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// GetPollByCode handles GET /codes/{code}
func (h *PollHandler) GetPollByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	var (
		p     models.Poll
		found bool
	)
	err := h.dispatcher.Do(r.Context(), func() {
		p, found = h.svc.GetPollByCode(code)
	})
	if err != nil {
		slog.Error("failed to read poll by code", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Code not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}
