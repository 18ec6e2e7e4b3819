// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix is prepended to the poll ID to form a pub/sub channel.
const DefaultChannelPrefix = "poll:"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisSink publishes each snapshot on the channel "poll:<id>".
type RedisSink struct {
	client redisPublisher
	prefix string
}

func NewRedisSink(ctx context.Context, url string) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing redis URL")
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "error connecting to redis")
	}

	return &RedisSink{client: c, prefix: DefaultChannelPrefix}, nil
}

func (r *RedisSink) Channel(pollID string) string {
	return r.prefix + pollID
}

func (r *RedisSink) Publish(ctx context.Context, pollID string, payload []byte) error {
	err := r.client.Publish(ctx, r.Channel(pollID), payload).Err()
	return errors.Wrapf(err, "error publishing snapshot of poll %s to redis", pollID)
}

func (r *RedisSink) Close() error {
	return errors.Wrap(r.client.Close(), "error closing redis client")
}
