package observer

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"EXAM_PROCTOR/go-backend/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

type controlMessage struct {
	Type string `json:"type"`
}

// client is one observer connection for one session.
type client struct {
	key  session.Key
	conn *websocket.Conn
	send chan any

	closeOnce sync.Once
}

func newClient(key session.Key, conn *websocket.Conn) *client {
	return &client{
		key:  key,
		conn: conn,
		send: make(chan any, sendBuffer),
	}
}

// close stops the write pump. Callers hold the hub lock.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump keeps the connection alive and answers pings until the
// observer goes away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg controlMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn("observer read failed", "session", c.key.String(), "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case "ping":
			h.enqueue(c, controlMessage{Type: "pong"})
		default:
			h.log.Debug("ignoring observer message", "session", c.key.String(), "type", msg.Type)
		}
	}
}

// writePump is the only writer on the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				h.metrics.IncrementObserverErrors()
				h.log.Warn("observer write failed", "session", c.key.String(), "error", err)
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
