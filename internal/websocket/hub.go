// Package websocket pushes reservation changes to connected clients so the
// booking UI can refresh without polling.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/parkeasy/parkeasy-backend/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeReservationCreated   MessageType = "reservation_created"
	MessageTypeReservationCancelled MessageType = "reservation_cancelled"
	MessageTypeReservationsUpdated  MessageType = "reservations_updated"
)

// Message represents a WebSocket message
type Message struct {
	Type        MessageType         `json:"type"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	Timestamp   int64               `json:"timestamp"`
}

// Hub manages WebSocket connections. All clients see all reservation
// events; the slot map is small enough that clients filter locally.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("WebSocket: client registered (total: %d)", len(h.clients))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("WebSocket: client unregistered (remaining: %d)", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("WebSocket: failed to marshal message: %v", err)
				continue
			}

			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- data:
				default:
					// Slow client; drop it rather than block the hub.
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}

// BroadcastReservationEvent pushes a reservation change to every connected
// client. The reservation may be nil for bulk updates.
func (h *Hub) BroadcastReservationEvent(event string, reservation *models.Reservation) {
	h.broadcast <- &Message{
		Type:        MessageType(event),
		Reservation: reservation,
		Timestamp:   time.Now().UnixMilli(),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
