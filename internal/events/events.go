package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Op names a write operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is published after every successful write to a content collection.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

// Publisher announces content changes to other instances.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Nop discards changes; used when events are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }

// RedisBus publishes and receives changes on a redis pub/sub channel.
type RedisBus struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBus(rdb *redis.Client, channel string) *RedisBus {
	return &RedisBus{rdb: rdb, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Listen calls handle for every change received until ctx is done.
// Malformed messages are logged and skipped.
func (b *RedisBus) Listen(ctx context.Context, handle func(context.Context, Change)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()
	// wait for the subscription to be confirmed so no message is missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				slog.Warn("events: malformed message", "channel", msg.Channel, "error", err)
				continue
			}
			handle(ctx, c)
		}
	}
}
