package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client represents one WebSocket connection for an authenticated user.
type Client struct {
	ID      string          // Unique session ID
	UserID  uuid.UUID       // Authenticated user
	Channel string          // Per-user channel this client listens on
	Conn    *websocket.Conn // Underlying connection
	Send    chan []byte     // Outbound message channel
	mu      sync.Mutex      // Protects conn writes
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, channel string) *Client {
	return &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

// WriteLoop drains the Send channel onto the connection and keeps it alive
// with pings.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage queues a message without blocking; a full buffer drops it.
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		// Channel full, message dropped
	}
}
