// internal/realtime/hub_test.go
package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, 4),
		joined: make(map[uuid.UUID]struct{}),
	}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case payload := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	default:
		t.Fatal("expected a queued frame")
		return Event{}
	}
}

func TestPushToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	phone := newTestClient(hub, userID)
	laptop := newTestClient(hub, userID)
	other := newTestClient(hub, uuid.New())
	hub.register(phone)
	hub.register(laptop)
	hub.register(other)

	hub.PushToUser(userID, Event{Event: EventReceiveNotification, Data: "hello"})

	assert.Equal(t, EventReceiveNotification, receive(t, phone).Event)
	assert.Equal(t, EventReceiveNotification, receive(t, laptop).Event)
	assert.Empty(t, other.send)
}

func TestConversationBroadcast(t *testing.T) {
	hub := NewHub()
	conversationID := uuid.New()

	member := newTestClient(hub, uuid.New())
	outsider := newTestClient(hub, uuid.New())
	hub.register(member)
	hub.register(outsider)
	hub.joinConversation(member, conversationID)

	hub.BroadcastToConversation(conversationID, Event{Event: EventReceiveMessage})
	assert.Equal(t, EventReceiveMessage, receive(t, member).Event)
	assert.Empty(t, outsider.send)

	hub.leaveConversation(member, conversationID)
	hub.BroadcastToConversation(conversationID, Event{Event: EventReceiveMessage})
	assert.Empty(t, member.send)
}

func TestJoinGateBlocksNonParticipants(t *testing.T) {
	hub := NewHub()
	conversationID := uuid.New()
	participantID := uuid.New()

	hub.CanJoin = func(userID uuid.UUID, _ uuid.UUID) bool {
		return userID == participantID
	}

	participant := newTestClient(hub, participantID)
	eavesdropper := newTestClient(hub, uuid.New())
	hub.register(participant)
	hub.register(eavesdropper)
	hub.joinConversation(participant, conversationID)
	hub.joinConversation(eavesdropper, conversationID)

	hub.BroadcastToConversation(conversationID, Event{Event: EventReceiveMessage})
	assert.Equal(t, EventReceiveMessage, receive(t, participant).Event)
	assert.Empty(t, eavesdropper.send)
	assert.Empty(t, eavesdropper.joined)
}

func TestUnregisterCleansUpSubscriptions(t *testing.T) {
	hub := NewHub()
	conversationID := uuid.New()

	client := newTestClient(hub, uuid.New())
	hub.register(client)
	hub.joinConversation(client, conversationID)
	hub.unregister(client)

	// Pushing after unregister must not panic or deliver.
	hub.PushToUser(client.userID, Event{Event: EventReceiveNotification})
	hub.BroadcastToConversation(conversationID, Event{Event: EventReceiveMessage})

	_, open := <-client.send
	assert.False(t, open)
}

func TestSlowClientDropsFrameInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, uuid.New())
	hub.register(client)

	for i := 0; i < cap(client.send)+3; i++ {
		hub.PushToUser(client.userID, Event{Event: EventReceiveNotification})
	}
	assert.Len(t, client.send, cap(client.send))
}
