package gateway

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client represents a single live socket connection. The user id is taken
// from the handshake token but the wire protocol still carries userId on the
// login/join payloads, which is what drives rooms and presence.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu           sync.RWMutex
	userID       string
	connectedAt  time.Time
	lastActivity time.Time
	logger       *GatewayLogger

	// sendMu serializes SendRaw with closeSend. Deliveries run outside the
	// hub loop, so a disconnect can race an emit; the flag turns a send to a
	// closing client into a dropped frame instead of a panic.
	sendMu sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, logger *GatewayLogger) *Client {
	now := time.Now()
	return &Client{
		ID:           uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		userID:       userID,
		connectedAt:  now,
		lastActivity: now,
		logger:       logger,
	}
}

// UserID returns the user currently bound to the connection.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetUserID rebinds the connection to a user (login/join payloads win over
// the handshake token).
func (c *Client) SetUserID(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// SendRaw queues an already-encoded frame without blocking. A full buffer
// drops the frame and logs a warning; a closed queue drops it silently.
func (c *Client) SendRaw(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		if c.logger != nil {
			c.logger.Warn("client send buffer full", c.UserID(), c.ID)
		}
	}
}

// closeSend shuts the outbound queue exactly once. Idempotent, so duplicate
// unregisters and Stop-after-unregister are safe.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.mu.Lock()
		c.lastActivity = time.Now()
		c.mu.Unlock()
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("socket unexpected close", c.UserID(), c.ID, err)
			}
			break
		}

		raw = bytes.TrimSpace(bytes.Replace(raw, newline, space, -1))
		c.mu.Lock()
		c.lastActivity = time.Now()
		c.mu.Unlock()

		if err := c.hub.dispatch(context.Background(), c, raw); err != nil {
			c.logger.Error("socket event failed", c.UserID(), c.ID, err)
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
