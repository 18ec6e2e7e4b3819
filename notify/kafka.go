// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes each snapshot to a topic keyed by poll ID, so all
// snapshots of one poll land on one partition in order.
type KafkaSink struct {
	writer kafkaWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Publish(ctx context.Context, pollID string, payload []byte) error {
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(pollID),
		Value: payload,
	})
	return errors.Wrapf(err, "failed to write snapshot of poll %s to kafka", pollID)
}

func (k *KafkaSink) Close() error {
	return errors.Wrap(k.writer.Close(), "failed to close kafka writer")
}
