package ws

import (
	"sync"
	"time"

	"github.com/mijwad7/elevateHub/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	readLimit = 1 << 20 // image frames arrive base64 encoded
	sendQueue = 256
)

type closeFrame struct {
	code   int
	reason string
}

// Client is one websocket connection. All writes go through Send and the
// WritePump goroutine; readers never touch the connection for writing.
type Client struct {
	UserID  int64
	Conn    *websocket.Conn
	Send    chan []byte
	channel string

	closeOnce   sync.Once
	releaseOnce sync.Once
	closing     chan closeFrame
}

func NewClient(userID int64, conn *websocket.Conn, channel string) *Client {
	activeConnections.WithLabelValues(channel).Inc()
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, sendQueue),
		channel: channel,
		closing: make(chan closeFrame, 1),
	}
}

// Enqueue queues a frame without blocking. False means the client's queue is
// full and the caller should treat it as too slow to keep.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// Close asks the write pump to send a close frame and shut the connection
// down. Safe to call multiple times; only the first code wins.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closing <- closeFrame{code: code, reason: reason}
	})
}

// WritePump drains Send onto the wire and keeps the connection alive with
// pings. It owns the connection's write side until the connection dies.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		c.release()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case cf := <-c.closing:
			// Frames queued before the close request (a terminal chat_ended
			// or call_ended broadcast) must still reach the wire first.
			for drained := false; !drained; {
				select {
				case msg := <-c.Send:
					_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					drained = true
				}
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(cf.code, cf.reason))
			return

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadLoop pumps inbound frames into handler until the connection drops.
// A nil handler discards everything (listen-only channels).
func (c *Client) ReadLoop(handler func(msg []byte)) {
	c.Conn.SetReadLimit(readLimit)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("ws read ended", "user_id", c.UserID, "channel", c.channel, "error", err)
			}
			return
		}
		if handler != nil {
			handler(msg)
		}
	}
}

func (c *Client) release() {
	c.releaseOnce.Do(func() {
		activeConnections.WithLabelValues(c.channel).Dec()
	})
}
