package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

// Event is one message on the rating feed.
type Event struct {
	Type          string      `json:"type"`
	Establishment string      `json:"feName"`
	Data          interface{} `json:"data"`
	At            time.Time   `json:"at"`
}

// Client is a single feed subscriber. An empty Establishment receives every event.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	Send          chan []byte
	Establishment string
}

// Hub fans rating events out to the connected feed clients.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *Event, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnections.Set(float64(total))
			logger.Info("Rating feed client registered", map[string]interface{}{
				"establishment": client.Establishment,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			metrics.WSConnections.Set(0)
			logger.Info("Rating feed hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))
	logger.Debug("Rating feed client unregistered", map[string]interface{}{
		"total_clients": total,
	})
}

func (h *Hub) deliver(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode feed event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		if client.Establishment != "" && client.Establishment != event.Establishment {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		metrics.WSMessagesDropped.Inc()
		logger.Warn("Feed client send buffer full, disconnecting", map[string]interface{}{
			"establishment": client.Establishment,
		})
		h.remove(client)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event without blocking; it is dropped when the hub is saturated.
func (h *Hub) Publish(eventType, establishment string, data interface{}) {
	event := &Event{
		Type:          eventType,
		Establishment: establishment,
		Data:          data,
		At:            time.Now().UTC(),
	}
	select {
	case h.broadcast <- event:
	default:
		metrics.WSMessagesDropped.Inc()
		logger.Warn("Rating feed saturated, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}
