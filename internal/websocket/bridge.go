package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBridge relays hub events between API instances over a single redis
// pub/sub channel. Delivery shares redis pub/sub semantics: at-most-once,
// no replay for instances that were down. That is acceptable because every
// subscription replays its snapshot from the database on (re)connect.

const bridgeChannel = "realtime:events"

type bridgeFrame struct {
	Origin  string          `json:"origin"`
	Topic   string          `json:"topic"`
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type RedisBridge struct {
	client *redis.Client
}

// NewRedisBridge connects to redis and verifies the connection.
func NewRedisBridge(redisAddr, password string) (*RedisBridge, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBridge{client: rdb}, nil
}

// Publish relays one event to every other instance.
func (b *RedisBridge) Publish(ctx context.Context, origin string, evt Event) error {
	frame := bridgeFrame{
		Origin:  origin,
		Topic:   evt.Topic,
		Kind:    evt.Kind,
		Payload: evt.Payload,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal bridge frame: %w", err)
	}
	return b.client.Publish(ctx, bridgeChannel, data).Err()
}

// Run subscribes to the bridge channel and feeds remote events into the hub
// until ctx is cancelled. Intended to run in its own goroutine.
func (b *RedisBridge) Run(ctx context.Context, hub *Hub) {
	pubsub := b.client.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				slog.Warn("discarding malformed bridge frame", "error", err)
				continue
			}
			hub.DeliverRemote(frame.Origin, Event{
				Topic:   frame.Topic,
				Kind:    frame.Kind,
				Payload: frame.Payload,
			})
		}
	}
}

// Close releases the redis connection.
func (b *RedisBridge) Close() error {
	return b.client.Close()
}
