package live

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Frames buffered per client; about two seconds at the base rate.
	sendBuffer = 128
)

// client is a middleman between the websocket connection and the hub.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

func newClient(hub *Hub, conn *websocket.Conn, remote string) *client {
	return &client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: remote,
	}
}

// readPump reads client commands until the connection fails.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "remote", c.remote, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Warn("invalid client message", "remote", c.remote, "error", err)
			continue
		}

		switch msg.Type {
		case TypeReset:
			c.hub.logger.Debug("reset requested", "remote", c.remote)
			c.hub.requestReset()
		default:
			c.hub.logger.Warn("unknown client message type", "remote", c.remote, "type", msg.Type)
		}
	}
}

// writePump sends queued messages and keepalive pings.
func (c *client) writePump() {
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
				// The hub closed the channel.
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
