package hub

import (
	"encoding/json"
	"sync"
)

// Event types pushed to chat subscribers.
const (
	EventMessage = "message"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one open stream of a chat participant. The SSE handler reads from it.
type Client chan []byte

// Hub fans chat events out to the streams currently open on each chat.
type Hub struct {
	chats map[string]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the process-wide hub used by the chat handlers.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		chats: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a new client to a chat.
func (h *Hub) Subscribe(chatID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.chats[chatID]; !ok {
		h.chats[chatID] = make(map[Client]bool)
	}
	h.chats[chatID][client] = true
}

// Unsubscribe removes a client from a chat and closes its channel.
func (h *Hub) Unsubscribe(chatID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.chats[chatID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.chats, chatID)
			}
		}
	}
}

// Subscribers returns how many streams are open on a chat.
func (h *Hub) Subscribers(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats[chatID])
}

// Broadcast sends an event to all clients of a chat. Slow clients whose buffer
// is full miss the event rather than blocking the sender.
func (h *Hub) Broadcast(chatID string, event Event) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.chats[chatID] {
		select {
		case client <- messageBytes:
		default:
		}
	}
	return nil
}
