// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (godotenv). Values
already present in the environment are not overwritten by it.

# CLI Flags and Environment Variables

	-p              PORT             Server port (default 3318)
	-scope          BROADCAST_SCOPE  poll or global (default poll)
	-origins        ALLOWED_ORIGINS  Websocket origin patterns (default *)
	-kafka-brokers  KAFKA_BROKERS    Mirror snapshots to Kafka (optional)
	-kafka-topic    KAFKA_TOPIC      Kafka topic (default poll-snapshots)
	-redis-url      REDIS_URL        Mirror snapshots to Redis pub/sub (optional)
	-log-level      LOG_LEVEL        debug, info, warn, error (default info)
	-log-format     LOG_FORMAT       text or json (default text)

CLI flags take precedence over environment variables. Nothing is required.
*/
package cliparse
