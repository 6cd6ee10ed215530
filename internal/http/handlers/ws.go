package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/service"
	"github.com/mijwad7/elevateHub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades the three realtime endpoints. The connection is upgraded
// before authentication so refusals arrive as websocket close codes instead of
// HTTP errors: browsers cannot read the status of a failed upgrade.
type WSHandler struct {
	notifications *ws.NotificationStream
	chat          *ws.ChatRelay
	calls         *ws.CallRelay
	allowedOrigin string
}

func NewWSHandler(notifications *ws.NotificationStream, chat *ws.ChatRelay, calls *ws.CallRelay, allowedOrigin string) *WSHandler {
	return &WSHandler{
		notifications: notifications,
		chat:          chat,
		calls:         calls,
		allowedOrigin: allowedOrigin,
	}
}

func (h *WSHandler) upgrade(c *gin.Context) (*websocket.Conn, error) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.allowedOrigin
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug("ws upgrade failed", "path", c.FullPath(), "error", err)
	}
	return conn, err
}

// Notifications serves the per-user notification stream.
func (h *WSHandler) Notifications(c *gin.Context) {
	conn, err := h.upgrade(c)
	if err != nil {
		return
	}
	client := ws.NewClient(0, conn, "notifications")
	go client.WritePump()

	userID, err := service.ParseJWT(c.Query("token"))
	if err != nil {
		client.Close(ws.CloseAuthFailed, "authentication failed")
		return
	}
	client.UserID = userID

	go h.notifications.Serve(context.Background(), client)
}

// Chat serves a chat room identified by its room key.
func (h *WSHandler) Chat(c *gin.Context) {
	conn, err := h.upgrade(c)
	if err != nil {
		return
	}
	client := ws.NewClient(0, conn, "chat")
	go client.WritePump()

	userID, err := service.ParseJWT(c.Query("token"))
	if err != nil {
		client.Close(ws.CloseAuthFailed, "authentication failed")
		return
	}
	client.UserID = userID

	room, err := h.chat.Resolve(c.Request.Context(), c.Param("room"))
	if err != nil {
		if errors.Is(err, ws.ErrRoomNotFound) {
			client.Close(ws.CloseRoomNotFound, "room not found")
		} else {
			client.Close(ws.CloseInternalError, "room lookup failed")
		}
		return
	}
	if err := room.Authorize(userID); err != nil {
		client.Close(ws.CloseNotParticipant, "not a participant")
		return
	}

	go h.chat.Serve(context.Background(), client, room)
}

// Call serves a video call signaling room.
func (h *WSHandler) Call(c *gin.Context) {
	conn, err := h.upgrade(c)
	if err != nil {
		return
	}
	client := ws.NewClient(0, conn, "call")
	go client.WritePump()

	userID, err := service.ParseJWT(c.Query("token"))
	if err != nil {
		client.Close(ws.CloseAuthFailed, "authentication failed")
		return
	}
	client.UserID = userID

	callID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		client.Close(ws.CloseRoomNotFound, "room not found")
		return
	}

	call, err := h.calls.Resolve(c.Request.Context(), callID)
	if err != nil {
		if errors.Is(err, ws.ErrRoomNotFound) {
			client.Close(ws.CloseRoomNotFound, "room not found")
		} else {
			client.Close(ws.CloseInternalError, "room lookup failed")
		}
		return
	}
	if err := h.calls.Authorize(call, userID); err != nil {
		client.Close(ws.CloseNotParticipant, "not a participant")
		return
	}

	go h.calls.Serve(context.Background(), client, call)
}
