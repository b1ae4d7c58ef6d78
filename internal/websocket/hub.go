package websocket

import (
	"encoding/json"
	"sync"

	"netlibrarium/internal/models"

	"github.com/rs/zerolog/log"
)

// AllTopics is the topic of clients that receive every event.
const AllTopics = ""

// Hub maintains the set of active clients and fans activity events out to
// them. Clients subscribe to one username, or to AllTopics.
type Hub struct {
	// Registered clients keyed by topic.
	clients map[string]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	events chan models.Event
	quit   chan struct{}
	once   sync.Once

	// Protects clients for readers outside Run.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		events:     make(chan models.Event, 256),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's processing loop. It returns after Stop.
func (h *Hub) Run() {
	log.Info().Msg("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.clients[client.Topic]; !ok {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			log.Debug().Str("topic", client.Topic).Int("connections", len(h.clients[client.Topic])).Msg("WebSocket client registered")
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			h.mu.RLock()
			h.deliver(event.Username, payload)
			if event.Username != AllTopics {
				h.deliver(AllTopics, payload)
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for _, topicClients := range h.clients {
				for client := range topicClients {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			log.Info().Msg("WebSocket hub stopped")
			return
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	topicClients, ok := h.clients[client.Topic]
	if !ok || !topicClients[client] {
		return
	}
	delete(topicClients, client)
	close(client.Send)
	if len(topicClients) == 0 {
		delete(h.clients, client.Topic)
	}
	log.Debug().Str("topic", client.Topic).Msg("WebSocket client unregistered")
}

// deliver must be called with h.mu held. Slow clients miss messages rather
// than stall the hub.
func (h *Hub) deliver(topic string, payload []byte) {
	for client := range h.clients[topic] {
		select {
		case client.Send <- payload:
		default:
			log.Warn().Str("topic", topic).Msg("WebSocket send buffer full, event dropped")
		}
	}
}

// Add registers client and reports whether the hub accepted it. A stopped
// hub accepts nothing.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Publish queues event for delivery. It never blocks the caller; when the
// queue is full the event is dropped.
func (h *Hub) Publish(event models.Event) {
	select {
	case h.events <- event:
	default:
		log.Warn().Str("type", string(event.Type)).Msg("WebSocket hub queue full, event dropped")
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// ClientCount reports the connections subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
