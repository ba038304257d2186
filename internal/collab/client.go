package collab

import (
	"encoding/json"
	"time"

	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512 * 1024
)

// Client is one websocket participant in a session room
type Client struct {
	room   *Room
	conn   *websocket.Conn
	send   chan []byte
	userID string
	role   string
}

// NewClient wraps an upgraded websocket connection. The role comes from the
// caller's session token and is what lock enforcement trusts.
func NewClient(room *Room, conn *websocket.Conn, userID, role string) *Client {
	return &Client{
		room:   room,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		role:   role,
	}
}

// sendMessage queues a message for this client only, dropping it if the
// client is too far behind
func (c *Client) sendMessage(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal session message", zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// ReadPump relays incoming messages to the room's run loop. It owns the
// connection's read side and must run in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.room.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Session websocket closed unexpectedly",
					zap.String("user_id", c.userID),
					zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			logger.Warn("Failed to unmarshal session message",
				zap.String("user_id", c.userID),
				zap.Error(err))
			continue
		}

		c.room.deliver(c, msg)
	}
}

// WritePump drains the send channel to the connection and keeps it alive
// with pings. It owns the connection's write side and must run in its own
// goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
