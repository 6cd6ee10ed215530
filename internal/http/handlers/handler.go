package handlers

import (
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB            *pgxpool.Pool
	Users         *repository.UserRepository
	HelpRequests  *repository.HelpRequestRepository
	Chats         *repository.ChatRepository
	Credits       *service.CreditService
	Notifications *service.NotificationService
	Sessions      *service.SessionService
	Mentorships   *service.MentorshipService
	Events        *service.EventRouter
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
