package websocket

import (
	"encoding/json"
	"sync"
)

const (
	EventEntryPosted          = "entry.posted"
	EventEntryReversed        = "entry.reversed"
	EventPayableStatusChanged = "payable.status_changed"
	EventAllocationCreated    = "allocation.created"
	EventAllocationReversed   = "allocation.reversed"
	EventPaymentFinalized     = "payment.finalized"
)

// AllTopics receives every event regardless of entity type.
const AllTopics = "*"

type Event struct {
	Type       string `json:"type"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Status     string `json:"status,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// Hub fans events out to websocket clients subscribed to an entity type or
// to AllTopics.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[*Client]struct{})
	}
	h.clients[topic][client] = struct{}{}
}

// Unregister closes the client's send channel the first time it removes it,
// which stops the write pump.
func (h *Hub) Unregister(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[topic][client]; !ok {
		return
	}
	delete(h.clients[topic], client)
	close(client.send)
	if len(h.clients[topic]) == 0 {
		delete(h.clients, topic)
	}
}

// Publish never blocks: a client whose buffer is full misses the event.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, topic := range []string{event.EntityType, AllTopics} {
		for client := range h.clients[topic] {
			select {
			case client.send <- payload:
			default:
			}
		}
	}
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
