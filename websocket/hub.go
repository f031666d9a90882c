package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"servicelink-server/models"
)

// Client represents a connected WebSocket client
type Client struct {
	Hub     *Hub
	ID      uint
	Role    models.UserRole
	Conn    *websocket.Conn
	Send    chan []byte
	session *Session
}

// Hub manages all WebSocket connections and is the UI collaborator the
// dispatcher drives: directives become typed messages on the owning user's
// connection.
type Hub struct {
	Clients map[uint]*Client

	Register   chan *Client
	Unregister chan *Client

	dispatcher *Dispatcher

	mu sync.RWMutex
}

// Message is the wire envelope for both directions
type Message struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Page           string      `json:"page,omitempty"`
	Kind           string      `json:"kind,omitempty"`
	Text           string      `json:"text,omitempty"`
	View           string      `json:"view,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// BindDispatcher wires the dispatcher whose sessions follow client lifecycle
func (h *Hub) BindDispatcher(d *Dispatcher) {
	h.dispatcher = d
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: ID=%d, Role=%s", client.ID, client.Role)

		case client := <-h.Unregister:
			h.mu.Lock()
			if current, ok := h.Clients[client.ID]; ok && current == client {
				delete(h.Clients, client.ID)
				close(client.Send)
				if h.dispatcher != nil {
					h.dispatcher.Detach(client.ID)
				}
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: ID=%d", client.ID)
		}
	}
}

// SendToUser sends a message to a specific user if connected. The read lock
// is held across the channel send: the run loop closes Send only under the
// write lock, so the channel cannot be closed mid-send.
func (h *Hub) SendToUser(userID uint, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.Clients[userID]
	if !exists {
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ User %d's send buffer is full", userID)
	}
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.Clients[userID]
	return exists
}

// Alert implements UI
func (h *Hub) Alert(userID uint, kind, message string) {
	h.SendToUser(userID, &Message{Type: "alert", Kind: kind, Text: message, Timestamp: time.Now()})
}

// BadgeUpdate implements UI
func (h *Hub) BadgeUpdate(userID uint, counts BadgeCounts) {
	h.SendToUser(userID, &Message{Type: "badge", Data: counts, Timestamp: time.Now()})
}

// ViewInvalidate implements UI
func (h *Hub) ViewInvalidate(userID uint, view string) {
	h.SendToUser(userID, &Message{Type: "view_invalidate", View: view, Timestamp: time.Now()})
}

// MessageAppend implements UI
func (h *Hub) MessageAppend(userID uint, conversationID string, msg *models.ChatMessage) {
	h.SendToUser(userID, &Message{Type: "chat_message", ConversationID: conversationID, Data: msg, Timestamp: time.Now()})
}

// RatingPrompt implements UI
func (h *Hub) RatingPrompt(userID uint, bookingID, targetID uint, targetRole models.UserRole) {
	h.SendToUser(userID, &Message{
		Type: "rating_prompt",
		Data: map[string]interface{}{
			"booking_id":  bookingID,
			"target_id":   targetID,
			"target_role": targetRole,
		},
		Timestamp: time.Now(),
	})
}
