// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/coin-poll/cliparse"
	"github.com/danielhkuo/coin-poll/hub"
	"github.com/danielhkuo/coin-poll/metrics"
	"github.com/danielhkuo/coin-poll/middleware"
	"github.com/danielhkuo/coin-poll/notify"
	"github.com/danielhkuo/coin-poll/poll"
	"github.com/danielhkuo/coin-poll/router"
	"github.com/danielhkuo/coin-poll/store"
)

const (
	dispatchBuffer  = 256
	sinkBuffer      = 256
	shutdownTimeout = 5 * time.Second
)

func newLogger(cfg cliparse.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	scope, err := hub.ParseScope(cfg.BroadcastScope)
	if err != nil {
		slog.Error("Error parsing broadcast scope", "error", err)
		os.Exit(1)
	}

	// signal.NotifyContext cancels ctx on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "coinpoll")

	wsHub := hub.New(scope, logger.With("component", "hub"))
	wsHub.OnConnectedChange(func(n int) { m.ConnectedClients.Set(float64(n)) })

	var wg sync.WaitGroup
	notifiers := notify.Multi{notify.Counted{Name: "websocket", Next: wsHub, Metrics: m}}

	// Optional snapshot mirrors
	if len(cfg.KafkaBrokers) > 0 {
		sink := notify.NewAsync("kafka", notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic), sinkBuffer, m, logger)
		notifiers = append(notifiers, sink)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Run(ctx)
		}()
		slog.Info("Mirroring snapshots to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.RedisURL != "" {
		redisSink, err := notify.NewRedisSink(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		sink := notify.NewAsync("redis", redisSink, sinkBuffer, m, logger)
		notifiers = append(notifiers, sink)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Run(ctx)
		}()
		slog.Info("Mirroring snapshots to Redis", "channel_prefix", notify.DefaultChannelPrefix)
	}

	svc := poll.NewService(store.New(), notifiers, logger.With("component", "poll"))
	dispatcher := poll.NewDispatcher(dispatchBuffer)
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	// Create router
	mux := router.NewRouter(router.Deps{
		Service:    svc,
		Dispatcher: dispatcher,
		Hub:        wsHub,
		Metrics:    m,
		Gatherer:   reg,
		Logger:     logger,
		Config:     cfg,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
		// websocket connections end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Server shutdown incomplete", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "scope", scope)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		stop()
	} else {
		slog.Info("Server closed", "error", err)
	}

	wg.Wait()
}
