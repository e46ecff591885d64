// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event names pushed over the websocket channel.
const (
	EventReceiveMessage      = "ReceiveMessage"
	EventMessagesRead        = "MessagesRead"
	EventReceiveNotification = "ReceiveNotification"
)

type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected clients per user and per conversation group.
// Delivery is fire-and-forget: the durable write always happens before a
// push, and a failed push only logs.
type Hub struct {
	// CanJoin gates conversation subscriptions. When set, a join request
	// for a conversation the user does not participate in is ignored, so
	// chat broadcasts stay between the two participants.
	CanJoin func(userID uuid.UUID, conversationID uuid.UUID) bool

	mu            sync.RWMutex
	userClients   map[uuid.UUID]map[*Client]struct{}
	conversations map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		userClients:   make(map[uuid.UUID]map[*Client]struct{}),
		conversations: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userClients[client.userID] == nil {
		h.userClients[client.userID] = make(map[*Client]struct{})
	}
	h.userClients[client.userID][client] = struct{}{}
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.userClients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.userID)
		}
	}

	for conversationID := range client.joined {
		if clients, ok := h.conversations[conversationID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.conversations, conversationID)
			}
		}
	}

	close(client.send)
}

func (h *Hub) joinConversation(client *Client, conversationID uuid.UUID) {
	// The membership check hits the store, so it runs outside the lock.
	if h.CanJoin != nil && !h.CanJoin(client.userID, conversationID) {
		logrus.WithFields(logrus.Fields{
			"user_id":         client.userID,
			"conversation_id": conversationID,
		}).Warn("Rejected subscription to a conversation the user is not part of")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[*Client]struct{})
	}
	h.conversations[conversationID][client] = struct{}{}
	client.joined[conversationID] = struct{}{}
}

func (h *Hub) leaveConversation(client *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.conversations[conversationID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.conversations, conversationID)
		}
	}
	delete(client.joined, conversationID)
}

// BroadcastToConversation pushes an event to every client subscribed to
// the conversation's group.
func (h *Hub) BroadcastToConversation(conversationID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal realtime event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.conversations[conversationID] {
		client.enqueue(payload)
	}
}

// PushToUser pushes an event to every connection the user currently has.
func (h *Hub) PushToUser(userID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal realtime event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[userID] {
		client.enqueue(payload)
	}
}
