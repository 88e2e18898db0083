package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 41250 * time.Millisecond
	heartbeatTimeout  = 10 * time.Second
	identifyTimeout   = 30 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	maxMessageSize    = 4096
	sendBufferSize    = 256
)

// Connection is a single WebSocket client.
type Connection struct {
	UserID    int64
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager

	identified atomic.Bool
	closeOnce  sync.Once
	done       chan struct{}

	lastHeartbeat atomic.Int64 // unix millis of the last client heartbeat
}

func newConnection(conn *websocket.Conn, manager *Manager) *Connection {
	c := &Connection{
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		manager: manager,
		done:    make(chan struct{}),
	}
	c.lastHeartbeat.Store(time.Now().UnixMilli())
	return c
}

// SendPayload queues p for the write pump. Slow clients lose messages
// rather than blocking dispatch.
func (c *Connection) SendPayload(p GatewayPayload) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("gateway: marshal payload", "userID", c.UserID, "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		slog.Warn("gateway: send buffer full, dropping message", "userID", c.UserID)
	}
}

// SendEvent queues a DISPATCH payload. A zero seq is omitted.
func (c *Connection) SendEvent(name string, data any, seq int64) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("gateway: marshal event", "event", name, "error", err)
		return
	}
	p := GatewayPayload{Op: OpDispatch, Data: raw, Event: &name}
	if seq > 0 {
		p.Sequence = &seq
	}
	c.SendPayload(p)
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("gateway: read error", "userID", c.UserID, "error", err)
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(message)
	}
}

func (c *Connection) writePump() {
	heartbeatTicker := time.NewTicker(heartbeatInterval)
	defer func() {
		heartbeatTicker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-heartbeatTicker.C:
			lastAck := c.lastHeartbeat.Load()
			if time.Since(time.UnixMilli(lastAck)) > heartbeatInterval+heartbeatTimeout {
				slog.Warn("gateway: heartbeat timeout", "userID", c.UserID)
				return
			}
			c.SendPayload(GatewayPayload{Op: OpHeartbeat})

		case <-c.done:
			return
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var payload GatewayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		slog.Warn("gateway: invalid payload", "userID", c.UserID, "error", err)
		return
	}

	switch payload.Op {
	case OpHeartbeat:
		c.lastHeartbeat.Store(time.Now().UnixMilli())
		c.SendPayload(GatewayPayload{Op: OpHeartbeatAck})

	case OpIdentify:
		if c.identified.Load() {
			return
		}
		c.manager.handleIdentify(c, payload.Data)

	case OpResume:
		if c.identified.Load() {
			return
		}
		c.manager.handleResume(c, payload.Data)
	}
}
