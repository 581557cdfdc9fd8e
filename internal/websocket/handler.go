package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

// TopicDirectory decides who may attach to a topic and produces the snapshot
// replayed when a subscription starts. Implemented by the service layer.
type TopicDirectory interface {
	Authorize(ctx context.Context, userID, role, topic string) error
	Snapshot(ctx context.Context, topic string) (interface{}, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler: handle upgrade request from HTTP connection to WebSocket.
// Expects the JWT auth middleware to have run first.
func WSHandler(hub *Hub, directory TopicDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		// get user info from JWT middleware
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user ID not found"})
			return
		}
		role, _ := c.Get("role")
		roleStr, _ := role.(string)

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade to WebSocket"})
			return
		}

		client := NewClient(userID.(string), roleStr, conn, hub, directory)

		// start goroutines for read and write pumps
		go client.ReadPump()
		go client.WritePump()
	}
}
