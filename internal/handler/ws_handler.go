package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"pulsechat/internal/auth"
	"pulsechat/internal/fanout"
	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"
	ws "pulsechat/internal/websocket"
	"pulsechat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Inbound realtime commands. Everything else a client can do goes over REST;
// only the transient, high-frequency signals ride the socket itself.
const (
	commandTypingStart  = "typing.start"
	commandTypingStop   = "typing.stop"
	commandMessagesRead = "messages.read"
)

type wsCommand struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type WSHandler struct {
	hub      *ws.Hub
	presence *services.PresenceService
	messages *services.MessageService
	secret   []byte
	log      *logger.Logger
}

func NewWSHandler(hub *ws.Hub, presence *services.PresenceService, messages *services.MessageService, secret []byte, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, presence: presence, messages: messages, secret: secret, log: log}
}

// Connect upgrades the request, registers the session for fanout and marks
// the user online. The read loop doubles as the liveness check: when it
// exits for any reason the session is torn down and presence updated.
func (h *WSHandler) Connect(c *gin.Context) {
	userID, err := auth.ParseAccessToken(h.secret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(conn, userID, fanout.UserChannel(userID))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	if err := h.presence.Connect(ctx, userID, client.ID); err != nil && h.log != nil {
		h.log.Errorf("ws: presence connect for %s: %v", userID, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		h.dispatch(ctx, userID, data)
	}

	h.hub.Unregister(client)
	if err := h.presence.Disconnect(context.Background(), userID, client.ID); err != nil && h.log != nil {
		h.log.Errorf("ws: presence disconnect for %s: %v", userID, err)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, userID uuid.UUID, data []byte) {
	var cmd wsCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return
	}
	otherUserID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return
	}

	switch cmd.Type {
	case commandTypingStart:
		h.presence.Typing(ctx, userID, otherUserID, true)
	case commandTypingStop:
		h.presence.Typing(ctx, userID, otherUserID, false)
	case commandMessagesRead:
		if err := h.messages.MarkRead(ctx, userID, otherUserID); err != nil && h.log != nil {
			h.log.Errorf("ws: mark read for %s: %v", userID, err)
		}
	}
}
