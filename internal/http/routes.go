package http

import (
	"github.com/mijwad7/elevateHub/internal/config"
	"github.com/mijwad7/elevateHub/internal/http/handlers"
	"github.com/mijwad7/elevateHub/internal/http/middleware"
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"
	"github.com/mijwad7/elevateHub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services, the websocket hub, and every
// HTTP and websocket endpoint onto the engine.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	users := repository.NewUserRepository(db)
	helpRequests := repository.NewHelpRequestRepository(db)
	chats := repository.NewChatRepository(db)
	calls := repository.NewCallRepository(db)
	mentorships := repository.NewMentorshipRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()

	creditSvc := service.NewCreditService(db)
	notifSvc := service.NewNotificationService(notifRepo, hub)
	router := service.NewEventRouter(creditSvc, notifSvc, service.Rewards{
		Upvote:           cfg.UpvoteReward,
		Download:         cfg.DownloadReward,
		MentorshipFee:    cfg.MentorshipFee,
		MentorshipAccept: cfg.MentorshipAcceptReward,
		MentorshipRating: cfg.MentorshipRatingReward,
	})
	sessionSvc := service.NewSessionService(chats, calls, helpRequests, mentorships, users, router, notifSvc, hub)
	mentorshipSvc := service.NewMentorshipService(mentorships, users, router)

	h := &handlers.Handler{
		DB:            db,
		Users:         users,
		HelpRequests:  helpRequests,
		Chats:         chats,
		Credits:       creditSvc,
		Notifications: notifSvc,
		Sessions:      sessionSvc,
		Mentorships:   mentorshipSvc,
		Events:        router,
	}
	healthHandler := handlers.NewHealthHandler(db, version)

	notifStream := ws.NewNotificationStream(hub, notifSvc)
	chatRelay := ws.NewChatRelay(hub, chats, mentorships, users)
	callRelay := ws.NewCallRelay(hub, calls)
	wsHandler := handlers.NewWSHandler(notifStream, chatRelay, callRelay, cfg.AllowedOrigin)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	authRL := middleware.RedisRateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
	api.POST("/auth/register", authRL, h.Register)
	api.POST("/auth/login", authRL, h.Login)
	api.GET("/me", middleware.JWT(), h.Me)

	// Credits
	api.GET("/credits/balance", middleware.JWT(), h.Balance)
	api.GET("/credits/transactions", middleware.JWT(), h.Transactions)

	// Notifications
	api.GET("/notifications", middleware.JWT(), h.ListNotifications)
	api.GET("/notifications/unread-count", middleware.JWT(), h.UnreadNotificationCount)
	api.POST("/notifications/:id/read", middleware.JWT(), h.MarkNotificationRead)
	api.POST("/notifications/read-all", middleware.JWT(), h.MarkAllNotificationsRead)

	// Domain events from the content layer
	api.POST("/events/upvote", middleware.JWT(), h.ReportUpvote)
	api.POST("/events/download", middleware.JWT(), h.ReportDownload)

	// Help requests and their sessions
	api.POST("/help-requests", middleware.JWT(), h.CreateHelpRequest)
	api.GET("/help-requests/:id", h.GetHelpRequest)
	api.POST("/help-requests/:id/chats", middleware.JWT(), h.StartChat)
	api.POST("/help-requests/:id/calls", middleware.JWT(), h.StartCall)
	api.POST("/chats/:id/end", middleware.JWT(), h.EndChat)
	api.POST("/calls/:id/end", middleware.JWT(), h.EndCall)
	api.GET("/chat-messages/:id/image", middleware.JWT(), h.ChatImage)

	// Mentorships
	api.POST("/mentorships", middleware.JWT(), h.RequestMentorship)
	api.POST("/mentorships/:id/accept", middleware.JWT(), h.AcceptMentorship)
	api.POST("/mentorships/:id/reject", middleware.JWT(), h.RejectMentorship)
	api.POST("/mentorships/:id/complete", middleware.JWT(), h.CompleteMentorship)
	api.POST("/mentorships/:id/chats", middleware.JWT(), h.StartMentorshipChat)
	api.POST("/mentorships/:id/calls", middleware.JWT(), h.StartMentorshipCall)

	// Realtime channels; auth happens after the upgrade, via close codes
	api.GET("/ws/notifications", wsHandler.Notifications)
	api.GET("/ws/chat/:room", wsHandler.Chat)
	api.GET("/ws/call/:id", wsHandler.Call)
}
