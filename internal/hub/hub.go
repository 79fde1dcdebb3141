package hub

import "sync"

// Client is one websocket session. A client may subscribe to any number
// of channels; slow clients get events dropped rather than blocking the
// broadcast path.
type Client struct {
	UserID string
	Send   chan []byte

	mu       sync.Mutex
	channels map[string]struct{}
}

func NewClient(userID string) *Client {
	return &Client{
		UserID:   userID,
		Send:     make(chan []byte, 256),
		channels: make(map[string]struct{}),
	}
}

func (c *Client) subscribed(channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.channels[channelID]
	return ok
}

// Hub tracks connected clients and routes events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if _, ok := h.byUser[c.UserID]; !ok {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	close(c.Send)
}

func (h *Hub) Subscribe(c *Client, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[channelID] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, channelID)
}

// BroadcastToChannel delivers payload to every client subscribed to the
// channel.
func (h *Hub) BroadcastToChannel(channelID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.subscribed(channelID) {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			// slow client, drop
		}
	}
}

// BroadcastToAll delivers payload to every connected client.
func (h *Hub) BroadcastToAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- payload:
		default:
		}
	}
}

// SendToUser delivers payload to every socket the user has open.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		select {
		case c.Send <- payload:
		default:
		}
	}
}
