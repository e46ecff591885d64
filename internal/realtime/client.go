// internal/realtime/client.go
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection owned by an authenticated user.
// Inbound frames only manage conversation subscriptions; all chat writes
// go through the HTTP API so persistence always precedes fan-out.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
	joined map[uuid.UUID]struct{}
}

type subscribeFrame struct {
	Action         string    `json:"action"` // "join" or "leave"
	ConversationID uuid.UUID `json:"conversation_id"`
}

// ServeWS upgrades the request and runs the connection pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 64),
		joined: make(map[uuid.UUID]struct{}),
	}
	hub.register(client)

	go client.writePump()
	go client.readPump()
}

func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		// Slow consumer; drop the frame rather than block the hub.
		logrus.WithField("user_id", c.userID).Warn("Dropping realtime frame for slow client")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("Websocket closed unexpectedly")
			}
			return
		}

		var frame subscribeFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			continue
		}

		switch frame.Action {
		case "join":
			c.hub.joinConversation(c, frame.ConversationID)
		case "leave":
			c.hub.leaveConversation(c, frame.ConversationID)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
