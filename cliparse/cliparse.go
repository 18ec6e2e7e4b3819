// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 3318
	DefaultKafkaTopic = "poll-snapshots"
)

type Config struct {
	Port           int
	BroadcastScope string
	KafkaBrokers   []string
	KafkaTopic     string
	RedisURL       string
	LogLevel       slog.Level
	LogFormat      string
	AllowedOrigins []string
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first; variables already
// set in the environment win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var (
		scope, brokers, topic, redisURL string
		level, format, origins          string
	)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("coin-poll", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&scope, "scope", "", "Broadcast scope (poll or global)")
	fs.StringVar(&origins, "origins", "", "Comma-separated websocket origin patterns")

	// Optional snapshot mirrors
	fs.StringVar(&brokers, "kafka-brokers", "", "Comma-separated Kafka brokers")
	fs.StringVar(&topic, "kafka-topic", "", "Kafka topic for poll snapshots")
	fs.StringVar(&redisURL, "redis-url", "", "Redis URL for poll snapshot pub/sub")

	fs.StringVar(&level, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&format, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.BroadcastScope = orEnv(scope, "BROADCAST_SCOPE", "poll")
	if cfg.BroadcastScope != "poll" && cfg.BroadcastScope != "global" {
		return Config{}, fmt.Errorf("invalid broadcast scope %q (want poll or global)", cfg.BroadcastScope)
	}

	cfg.KafkaBrokers = splitList(orEnv(brokers, "KAFKA_BROKERS", ""))
	cfg.KafkaTopic = orEnv(topic, "KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.RedisURL = orEnv(redisURL, "REDIS_URL", "")

	if err := cfg.LogLevel.UnmarshalText([]byte(orEnv(level, "LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.LogFormat = orEnv(format, "LOG_FORMAT", "text")
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}

	cfg.AllowedOrigins = splitList(orEnv(origins, "ALLOWED_ORIGINS", "*"))

	return cfg, nil
}

func orEnv(flagValue, key, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
