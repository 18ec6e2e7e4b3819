// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/coin-poll/cliparse"
	"github.com/danielhkuo/coin-poll/handlers"
	"github.com/danielhkuo/coin-poll/hub"
	"github.com/danielhkuo/coin-poll/metrics"
	"github.com/danielhkuo/coin-poll/middleware"
	"github.com/danielhkuo/coin-poll/poll"
)

// Deps is everything the routes need.
type Deps struct {
	Service    *poll.Service
	Dispatcher *poll.Dispatcher
	Hub        *hub.Hub
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
	Config     cliparse.Config
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	commands := handlers.NewCommandHandler(deps.Service, deps.Dispatcher, deps.Metrics, deps.Logger)
	socketHandler := handlers.NewSocketHandler(deps.Hub, commands, deps.Config.AllowedOrigins)
	pollHandler := handlers.NewPollHandler(deps.Service, deps.Dispatcher)
	networkHandler := handlers.NewNetworkHandler(deps.Config.Port)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Real-time commands and broadcasts
	mux.HandleFunc("GET /ws", middleware.WithLogging(socketHandler.Serve))

	// Read-only snapshots
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /codes/{code}", middleware.WithLogging(pollHandler.GetPollByCode))

	mux.HandleFunc("GET /network/addresses", middleware.WithLogging(networkHandler.GetAddresses))

	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("coin-poll API v1"))
	})

	return mux
}
