// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify composes the broadcast path.

The poll service calls one poll.Notifier after each applied command. This
package builds that notifier out of parts:

	notify.Multi{
		notify.Counted{Name: "websocket", Next: wsHub, Metrics: m},
		notify.NewAsync("kafka", notify.NewKafkaSink(brokers, topic), 256, m, logger),
		notify.NewAsync("redis", redisSink, 256, m, logger),
	}

# Sinks

Kafka and Redis sinks are optional mirrors of the websocket broadcast for
consumers outside this process. They are wrapped in Async so a slow broker
never stalls command dispatch; Async.Run must be started in its own
goroutine and closes the sink when its context ends.

  - KafkaSink: message key = poll ID, value = snapshot JSON
  - RedisSink: PUBLISH poll:<id> <snapshot JSON>
*/
package notify
