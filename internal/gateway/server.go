package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients authenticate with IDENTIFY, not cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket handles GET /gateway by upgrading to WebSocket. Clients
// that do not identify within identifyTimeout are disconnected.
func (m *Manager) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("gateway: upgrade failed", "error", err)
		return nil
	}

	conn := newConnection(ws, m)
	conn.SendPayload(GatewayPayload{
		Op:   OpHello,
		Data: mustMarshal(HelloData{HeartbeatInterval: int(heartbeatInterval.Milliseconds())}),
	})

	time.AfterFunc(identifyTimeout, func() {
		if !conn.identified.Load() {
			conn.Close()
		}
	})

	go conn.writePump()
	go conn.readPump()
	return nil
}
