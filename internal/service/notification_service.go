package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/repository"
)

// LegacyNotificationGroup is the process-wide group older clients subscribe
// to in addition to their per-user group.
const LegacyNotificationGroup = "notifications"

// UserNotificationGroup is the broadcast group key for one user's devices.
func UserNotificationGroup(userID int64) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// Pusher delivers a payload to every live connection in a group. Delivery is
// best-effort; disconnected users catch up from the stored backlog.
type Pusher interface {
	Push(group string, payload []byte)
}

type NotificationService struct {
	repo   *repository.NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo *repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Notify persists the notification and then pushes it to the user's live
// connections. Persistence always comes first: a push failure only costs the
// realtime copy, never the record.
func (s *NotificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	notificationsCreated.WithLabelValues(n.Type).Inc()

	s.push(n)
	return nil
}

func (s *NotificationService) push(n *domain.Notification) {
	if s.pusher == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":         "notification",
		"notification": n,
	})
	if err != nil {
		logger.Error("marshal notification push", "notification_id", n.ID, "error", err)
		return
	}

	// The legacy group is join-only for old clients; publishing there would
	// leak every user's notifications to every connection.
	s.pusher.Push(UserNotificationGroup(n.UserID), payload)
}

func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, 0)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
