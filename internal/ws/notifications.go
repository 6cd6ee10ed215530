package ws

import (
	"context"
	"encoding/json"

	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/service"
)

// NotificationStream serves the per-user notification channel: unread
// backlog first, then live pushes. Inbound frames are ignored.
type NotificationStream struct {
	hub    *Hub
	notifs *service.NotificationService
}

func NewNotificationStream(hub *Hub, notifs *service.NotificationService) *NotificationStream {
	return &NotificationStream{hub: hub, notifs: notifs}
}

// Serve replays the user's unread notifications and keeps the connection
// subscribed until it drops. The backlog is queued before the group join, so
// every backlog frame is delivered before any live push.
func (s *NotificationStream) Serve(ctx context.Context, c *Client) {
	backlog, err := s.notifs.List(ctx, c.UserID, true)
	if err != nil {
		logger.Error("notification backlog load failed", "user_id", c.UserID, "error", err)
		c.Close(CloseInternalError, "backlog unavailable")
		return
	}

	for _, n := range backlog {
		payload, err := json.Marshal(map[string]any{
			"type":         "notification",
			"notification": n,
		})
		if err != nil {
			continue
		}
		if !c.Enqueue(payload) {
			c.Close(CloseInternalError, "send queue overflow")
			return
		}
	}

	s.hub.Join(service.UserNotificationGroup(c.UserID), c)
	s.hub.Join(service.LegacyNotificationGroup, c)

	c.ReadLoop(nil)
	s.hub.RemoveClient(c)
}
