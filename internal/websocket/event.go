package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Wire protocol for the realtime subscription surface.
//
// Client -> server: SubscribeRequest {action, topic}
// Server -> client: Event {topic, kind, payload}
//
// A subscription replays a snapshot first, then pushes deltas in the order
// the server observed them. Per-topic order is guaranteed; cross-topic order
// is not.

type EventKind string

const (
	KindSnapshot EventKind = "snapshot"
	KindDelta    EventKind = "delta"
	KindError    EventKind = "error"
)

// Well-known topics. Chat and notification topics are parameterized.
const TopicUsers = "users"

// ChatTopic names the delta stream of one chat channel.
func ChatTopic(channelID string) string {
	return "chat:" + channelID
}

// NotificationTopic names the per-user notification stream.
func NotificationTopic(userID string) string {
	return "notifications:" + userID
}

// Event is the server-to-client envelope.
type Event struct {
	Topic   string          `json:"topic"`
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`

	// origin tags which API instance produced the event so the redis
	// bridge can discard its own echoes. Not sent to clients.
	origin string
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// SubscribeRequest is the client-to-server control message.
type SubscribeRequest struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Topic  string `json:"topic"`
}

// NewEvent builds an event, marshaling the payload.
func NewEvent(topic string, kind EventKind, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return Event{Topic: topic, Kind: kind, Payload: data}, nil
}

// ToJSON: marshal Event struct to JSON
func (e Event) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal event to JSON", "error", err)
		return nil, err
	}
	return data, nil
}

// EventFromJSON: unmarshal JSON data to Event struct
func EventFromJSON(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		slog.Error("Failed to unmarshal event from JSON", "error", err)
		return Event{}, err
	}
	return evt, nil
}
