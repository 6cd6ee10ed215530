package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"

	"github.com/gin-gonic/gin"
)

type createHelpRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Description      string `json:"description" binding:"required"`
	CreditOfferChat  int64  `json:"credit_offer_chat" binding:"min=0"`
	CreditOfferVideo int64  `json:"credit_offer_video" binding:"min=0"`
}

// CreateHelpRequest publishes a help request with its credit offers.
func (h *Handler) CreateHelpRequest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createHelpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hr := &domain.HelpRequest{
		Title:            req.Title,
		Description:      req.Description,
		CreatedBy:        userID,
		CreditOfferChat:  req.CreditOfferChat,
		CreditOfferVideo: req.CreditOfferVideo,
	}
	if err := h.HelpRequests.Create(c.Request.Context(), hr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, hr)
}

// GetHelpRequest returns one help request.
func (h *Handler) GetHelpRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	hr, err := h.HelpRequests.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "help request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, hr)
}

// StartChat opens a chat session on a help request, with the caller as
// helper.
func (h *Handler) StartChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	helpRequestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid help request id"})
		return
	}

	session, err := h.Sessions.StartChat(c.Request.Context(), helpRequestID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// StartMentorshipChat opens the chat room of an active mentorship.
func (h *Handler) StartMentorshipChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mentorshipID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentorship id"})
		return
	}

	session, err := h.Sessions.StartMentorshipChat(c.Request.Context(), mentorshipID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// EndChat ends a chat session and settles its credit offer.
func (h *Handler) EndChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	if err := h.Sessions.EndChat(c.Request.Context(), sessionID, userID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "chat_ended"})
}

// StartCall creates a video call on a help request, with the caller as
// helper.
func (h *Handler) StartCall(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	helpRequestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid help request id"})
		return
	}

	call, err := h.Sessions.StartCall(c.Request.Context(), helpRequestID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, call)
}

// StartMentorshipCall creates a video call inside an active mentorship.
func (h *Handler) StartMentorshipCall(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mentorshipID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentorship id"})
		return
	}

	call, err := h.Sessions.StartMentorshipCall(c.Request.Context(), mentorshipID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, call)
}

// EndCall ends a video call and settles its credit offer.
func (h *Handler) EndCall(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	callID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	if err := h.Sessions.EndCall(c.Request.Context(), callID, userID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "call_ended"})
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	case errors.Is(err, service.ErrOwnHelpRequest), errors.Is(err, service.ErrHelperOnlyAction):
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot act on your own help request"})
	case errors.Is(err, service.ErrNoCreditOffer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "help request offers no credits for this channel"})
	case errors.Is(err, service.ErrAlreadyEnded):
		c.JSON(http.StatusConflict, gin.H{"error": "already ended"})
	case errors.Is(err, service.ErrMentorshipClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "mentorship is not active"})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
