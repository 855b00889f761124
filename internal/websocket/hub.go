package websocket

import (
	"context"
	"sync"
)

// Hub tracks active client connections and the per-user channels they are
// subscribed to. A user may hold several concurrent connections; a broadcast
// to the user's channel reaches all of them.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// channels maps channel name to the set of subscribed clients
	channels map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		channels:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register adds a client and subscribes it to its user channel.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and its subscriptions.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends a payload to every client subscribed to a channel. A
// channel with no subscribers is a silent no-op; a slow client drops the
// payload rather than blocking the caller.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	clients := h.channels[channel]
	for c := range clients {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of subscribers on a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.channels[client.Channel]; !ok {
		h.channels[client.Channel] = make(map[*Client]struct{})
	}
	h.channels[client.Channel][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if subscribers, ok := h.channels[client.Channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, client.Channel)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)
}
