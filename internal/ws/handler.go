package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blackjack-service/internal/middleware"
	"blackjack-service/internal/service/session"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ActionHit    = "hit"
	ActionStand  = "stand"
	ActionStatus = "status"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type IncomingMessage struct {
	Type string `json:"type"`
}

type Handler struct {
	sessions *session.Registry
	upgrader websocket.Upgrader
}

// NewHandler accepts sockets from the same browser origins the CORS middleware allows.
func NewHandler(sessions *session.Registry, allowedOrigins []string) *Handler {
	origins := middleware.NewOrigins(allowedOrigins)
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return origins.Allows(r.Header.Get("Origin"))
			},
		},
	}
}

// HandleGameWS plays one game over a socket. Every client frame gets exactly one reply.
func (h *Handler) HandleGameWS(c *gin.Context) {
	gameID := c.Param("gameId")
	if _, err := h.sessions.Status(c.Request.Context(), gameID); err != nil {
		if errors.Is(err, appErr.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection", zap.String("gameID", gameID))

	client := newClient(conn, gameID, h.sessions)
	client.run()
}

type client struct {
	conn      *websocket.Conn
	gameID    string
	sessions  *session.Registry
	outbound  chan OutgoingMessage
	done      chan struct{}
	seq       int64
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, gameID string, sessions *session.Registry) *client {
	conn.SetReadLimit(4 << 10)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		gameID:    gameID,
		sessions:  sessions,
		outbound:  make(chan OutgoingMessage, 8),
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	c.handle(ActionStatus)
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("gameID", c.gameID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil || incoming.Type == "" {
			c.pushError("invalid payload")
			continue
		}
		c.handle(incoming.Type)
	}
}

func (c *client) handle(action string) {
	ctx := context.Background()
	var (
		data interface{}
		err  error
	)
	switch action {
	case ActionHit:
		data, err = c.sessions.Hit(ctx, c.gameID)
	case ActionStand:
		data, err = c.sessions.Stand(ctx, c.gameID)
	case ActionStatus:
		data, err = c.sessions.Status(ctx, c.gameID)
	default:
		c.pushError("unknown action " + action)
		return
	}

	switch {
	case err == nil:
		c.push(OutgoingMessage{Type: "state", Data: data})
	case errors.Is(err, appErr.ErrGameNotFound):
		c.pushError("Game not found")
	case errors.Is(err, appErr.ErrIllegalAction):
		c.pushError("Cannot " + action + " when game is not in playing state")
	default:
		logger.Log.Error("WS game action failed", zap.String("action", action), zap.String("gameID", c.gameID), zap.Error(err))
		c.pushError("action failed")
	}
}

func (c *client) pushError(msg string) {
	c.push(OutgoingMessage{Type: "error", Data: gin.H{"message": msg}})
}

func (c *client) push(msg OutgoingMessage) {
	c.seq++
	msg.Seq = c.seq
	select {
	case c.outbound <- msg:
	default:
		logger.Log.Warn("ws client channel full", zap.String("gameID", c.gameID))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outbound:
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("gameID", c.gameID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
