// ABOUTME: Websocket endpoint for realtime message delivery
// ABOUTME: Upgrades the connection and pipes broadcaster events to the client as JSON

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rajputkuldeep/chat-application/internal/auth"
	"github.com/rajputkuldeep/chat-application/internal/chat"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsPongTimeout    = 60 * time.Second
	wsPingInterval   = 54 * time.Second
	wsMaxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth already ran in the middleware; origin is not checked
		return true
	},
}

// handleWebsocket handles GET /ws.
// The client receives every global message plus private messages it
// participates in, as JSON-encoded events. Client frames other than control
// messages are ignored; sends go through the REST endpoints.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	// The subscription lives as long as the connection; cancelling the
	// context tears it down in the broadcaster.
	ctx, cancel := context.WithCancel(context.Background())
	events, subID := s.svc.Broadcaster().Subscribe(ctx, chat.TopicGlobal, identity.UserID)

	s.logger.Debug("websocket connected", "user_id", identity.UserID, "sub_id", subID)

	go s.wsWritePump(conn, events, cancel)
	go s.wsReadPump(conn, identity.UserID, cancel)
}

// wsWritePump forwards broadcaster events to the client and keeps the
// connection alive with pings.
func (s *Server) wsWritePump(conn *websocket.Conn, events <-chan *chat.Event, cancel context.CancelFunc) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				// Broadcaster closed the subscription
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsReadPump drains client frames so control messages are processed and
// connection teardown is detected promptly.
func (s *Server) wsReadPump(conn *websocket.Conn, userID string, cancel context.CancelFunc) {
	defer func() {
		cancel()
		conn.Close()
		s.logger.Debug("websocket disconnected", "user_id", userID)
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "user_id", userID, "error", err)
			}
			return
		}
	}
}
