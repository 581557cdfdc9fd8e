package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const ( // ping pong (2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send pings before the pong deadline expires, with headroom for jitter
	MaxMessageSize = 512                 // maximum control message size allowed from peer
)

// Client is one websocket connection with its set of live subscriptions.
type Client struct {
	UserID string
	Role   string

	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	directory TopicDirectory

	mu   sync.Mutex
	subs map[string]string // topic -> subscription id

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(userID, role string, conn *websocket.Conn, hub *Hub, directory TopicDirectory) *Client {
	return &Client{
		UserID:    userID,
		Role:      role,
		conn:      conn,
		send:      make(chan []byte, subscriberBuffer),
		hub:       hub,
		directory: directory,
		subs:      make(map[string]string),
		done:      make(chan struct{}),
	}
}

// ReadPump consumes subscribe/unsubscribe control messages until the
// connection dies. Runs in its own goroutine; tears the client down on exit.
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		var req SubscribeRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "user_id", c.UserID, "error", err)
			}
			return
		}

		switch req.Action {
		case ActionSubscribe:
			c.subscribe(req.Topic)
		case ActionUnsubscribe:
			c.unsubscribe(req.Topic)
		default:
			c.sendError(req.Topic, "unknown action")
		}
	}
}

// WritePump drains the send channel to the connection and keeps the
// heartbeat going. Runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// subscribe authorizes the topic, registers for deltas, then replays the
// snapshot. Registration happens before the snapshot read so no delta can
// fall into the gap; a delta racing the snapshot may duplicate its tail,
// which keeps per-topic order non-decreasing either way.
func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	_, already := c.subs[topic]
	c.mu.Unlock()
	if already {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.directory.Authorize(ctx, c.UserID, c.Role, topic); err != nil {
		c.sendError(topic, "not allowed")
		return
	}

	subID, ch := c.hub.Subscribe(topic)
	c.mu.Lock()
	c.subs[topic] = subID
	c.mu.Unlock()

	snapshot, err := c.directory.Snapshot(ctx, topic)
	if err != nil {
		slog.Error("snapshot read failed", "topic", topic, "error", err)
		c.unsubscribe(topic)
		c.sendError(topic, "snapshot unavailable")
		return
	}

	evt, err := NewEvent(topic, KindSnapshot, snapshot)
	if err != nil {
		c.unsubscribe(topic)
		return
	}
	c.enqueue(evt)

	go c.forward(topic, ch)
}

func (c *Client) unsubscribe(topic string) {
	c.mu.Lock()
	subID, ok := c.subs[topic]
	if ok {
		delete(c.subs, topic)
	}
	c.mu.Unlock()
	if ok {
		c.hub.Unsubscribe(topic, subID)
	}
}

// forward relays hub deltas for one topic into the connection until the hub
// closes the channel (unsubscribe or slow-subscriber drop).
func (c *Client) forward(topic string, ch <-chan Event) {
	for evt := range ch {
		c.enqueue(evt)
	}
	// hub dropped us: forget the stale subscription id
	c.mu.Lock()
	delete(c.subs, topic)
	c.mu.Unlock()
}

func (c *Client) enqueue(evt Event) {
	data, err := evt.ToJSON()
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		// connection writer fell behind; drop it, a reconnect replays state
		slog.Warn("closing slow websocket client", "user_id", c.UserID)
		c.Close()
	}
}

func (c *Client) sendError(topic, reason string) {
	evt, err := NewEvent(topic, KindError, map[string]string{"error": reason})
	if err != nil {
		return
	}
	c.enqueue(evt)
}

// Close tears down every subscription and the connection. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		subs := c.subs
		c.subs = make(map[string]string)
		c.mu.Unlock()

		for topic, subID := range subs {
			c.hub.Unsubscribe(topic, subID)
		}
		c.conn.Close()
	})
}
