package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

const maxFrameSize = 1 << 20 // 1 MiB

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket gates, upgrades, and pumps one client connection. The
// gatekeeper runs before the upgrade so rejected clients get a plain
// HTTP status instead of a doomed WebSocket handshake.
func (s *Server) handleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()

	if s.gatekeeper != nil {
		info := domain.ClientInfo{
			IP:        c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		}
		decision, err := s.gatekeeper.Check(ctx, info)
		if err != nil {
			slog.Error("Gatekeeper check failed", "ip", info.IP, "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})
		}
		switch decision {
		case domain.GateRateLimited:
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		case domain.GateDenied:
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}
	conn.SetReadLimit(maxFrameSize)

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("Rejecting connection", "ip", c.RealIP(), "error", err)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server at capacity")
		_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
		if err := conn.Close(); err != nil {
			return fmt.Errorf("failed to close rejected connection: %w", err)
		}
		return nil
	}

	s.readPump(conn)
	return nil
}

// readPump reads frames until the connection dies. Frames reach the hub
// in arrival order; the hub ignores anything it does not understand.
func (s *Server) readPump(conn *websocket.Conn) {
	defer func() {
		s.hub.Unregister(conn)
		_ = conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.hub.HandleMessage(conn, data)
	}
}
