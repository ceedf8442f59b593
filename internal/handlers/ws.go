// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// WSHandler upgrades the request and feeds every text frame to the orchestrator as one command.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		}
		if s.Config.IsProduction() {
			opts.OriginPatterns = originHosts(s.Config.App.AllowedOrigins)
		}
		c, err := websocket.Accept(w, r, opts)
		if err != nil {
			s.logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the uno subprotocol")
			return
		}

		middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path)
		conn := lobby.NewConnection(r.RemoteAddr, s.Config.WebSocket.OutboxSize)
		s.Orchestrator.Attach(conn)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go s.writePump(ctx, c, conn)
		err = s.readPump(ctx, c, conn)

		s.Orchestrator.Detach(conn)
		middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readPump reads commands until the socket closes. Commands over the rate limit are
// answered with an error and dropped.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, conn *lobby.Connection) error {
	limiter := rate.NewLimiter(rate.Limit(s.Config.WebSocket.MessagesPerSecond), s.Config.WebSocket.Burst)
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.logger.WithField("conn", conn.ID).Warnf("ignoring non-text message type %d", typ)
			continue
		}
		if !limiter.Allow() {
			conn.Write(session.Result{Type: "error", Message: "too many messages, slow down"})
			continue
		}

		var cmd models.Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.logger.WithFields(logrus.Fields{"conn": conn.ID, "error": err}).Debug("invalid command json")
			conn.Write(session.Result{Type: "error", Message: "invalid JSON format"})
			continue
		}
		conn.Write(s.Orchestrator.Handle(conn, cmd))
	}
}

// writePump drains the connection outbox onto the socket and keeps it alive with pings.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *lobby.Connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warnf("failed to marshal outgoing %T for %s: %v", msg, conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Warnf("failed to write to websocket %s: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.logger.Warnf("ping failed for %s: %v", conn.ID, err)
				return
			}
		}
	}
}
