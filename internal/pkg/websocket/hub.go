package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types pushed to list pages
const (
	EventStudentCreated = "student.created"
	EventStudentUpdated = "student.updated"
	EventStudentDeleted = "student.deleted"
)

// Event tells connected list pages that the student table changed
type Event struct {
	Type      string    `json:"type"`
	StudentID int64     `json:"studentId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of open list pages and fans change events out to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Events waiting to be broadcast
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.logger.Debug().Str("addr", client.remoteAddr).Int("clients", len(h.clients)).Msg("Live update client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug().Str("addr", client.remoteAddr).Int("clients", len(h.clients)).Msg("Live update client unregistered")
	}
}

// broadcastEvent sends event to every client; clients whose buffer is full are dropped
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn().Str("addr", client.remoteAddr).Msg("Dropped slow live update client")
		}
	}

	h.logger.Debug().Str("type", event.Type).Int("clients", len(h.clients)).Msg("Event broadcast")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Publish queues an event for broadcast without blocking the caller.
// A nil Hub ignores events, so live updates are optional.
func (h *Hub) Publish(eventType string, studentID int64) {
	if h == nil {
		return
	}

	event := &Event{Type: eventType, StudentID: studentID, Timestamp: time.Now()}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", eventType).Msg("Live update queue full, event dropped")
	}
}

// ClientCount returns the number of connected list pages
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
