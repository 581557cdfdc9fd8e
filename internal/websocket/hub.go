package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Hub is the in-process half of the realtime subscription layer: a registry
// of topic subscribers, each fed through its own buffered channel. Writers
// never block on a slow reader; a subscriber whose buffer is full is dropped
// and must resubscribe (which replays the snapshot, so nothing is lost).
//
// Cross-instance delivery is handled by an optional Bridge which relays
// published events through redis.

// subscriberBuffer bounds how far a reader may fall behind before it is
// dropped.
const subscriberBuffer = 64

// Publisher is the write side handed to services.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{})
}

// Bridge relays events between API instances.
type Bridge interface {
	Publish(ctx context.Context, origin string, evt Event) error
}

type subscriber struct {
	id    string
	topic string
	ch    chan Event
}

type Hub struct {
	instanceID string
	bridge     Bridge

	mu     sync.RWMutex
	topics map[string]map[string]*subscriber // topic -> subscription id -> subscriber
}

func NewHub(bridge Bridge) *Hub {
	return &Hub{
		instanceID: uuid.New().String(),
		bridge:     bridge,
		topics:     make(map[string]map[string]*subscriber),
	}
}

// InstanceID identifies this hub to the bridge.
func (h *Hub) InstanceID() string {
	return h.instanceID
}

// Subscribe registers a new subscription on topic and returns its id and the
// delta channel. The channel is closed when the subscriber is dropped or
// unsubscribed.
func (h *Hub) Subscribe(topic string) (string, <-chan Event) {
	sub := &subscriber{
		id:    uuid.New().String(),
		topic: topic,
		ch:    make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]*subscriber)
	}
	h.topics[topic][sub.id] = sub
	slog.Debug("subscriber added", "topic", topic, "subscription_id", sub.id)
	return sub.id, sub.ch
}

// Unsubscribe removes a subscription. Safe to call twice.
func (h *Hub) Unsubscribe(topic, subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[topic]
	if subs == nil {
		return
	}
	if sub, ok := subs[subscriptionID]; ok {
		delete(subs, subscriptionID)
		close(sub.ch)
		slog.Debug("subscriber removed", "topic", topic, "subscription_id", subscriptionID)
	}
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish fans a delta out to local subscribers and relays it through the
// bridge. Best-effort: marshal or bridge failures are logged, never returned,
// so a failed push can never retract the write that triggered it.
func (h *Hub) Publish(ctx context.Context, topic string, payload interface{}) {
	evt, err := NewEvent(topic, KindDelta, payload)
	if err != nil {
		slog.Error("dropping unmarshalable event", "topic", topic, "error", err)
		return
	}
	evt.origin = h.instanceID

	h.deliverLocal(evt)

	if h.bridge != nil {
		if err := h.bridge.Publish(ctx, h.instanceID, evt); err != nil {
			slog.Warn("bridge publish failed", "topic", topic, "error", err)
		}
	}
}

// DeliverRemote injects an event received from another instance. Events that
// originated here already went out locally and are ignored.
func (h *Hub) DeliverRemote(origin string, evt Event) {
	if origin == h.instanceID {
		return
	}
	h.deliverLocal(evt)
}

func (h *Hub) deliverLocal(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.topics[evt.Topic] {
		select {
		case sub.ch <- evt:
		default:
			// reader fell too far behind
			delete(h.topics[evt.Topic], id)
			close(sub.ch)
			slog.Warn("dropped slow subscriber", "topic", evt.Topic, "subscription_id", id)
		}
	}
}

// SubscriberCount returns the number of live subscriptions on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
