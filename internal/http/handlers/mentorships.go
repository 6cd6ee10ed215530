package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mijwad7/elevateHub/internal/service"

	"github.com/gin-gonic/gin"
)

type mentorshipRequest struct {
	MentorID int64  `json:"mentor_id" binding:"required"`
	Skill    string `json:"skill" binding:"required,max=100"`
}

type completeMentorshipRequest struct {
	Rating   *int    `json:"rating,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

// RequestMentorship creates a pending mentorship request, charging the fee.
func (h *Handler) RequestMentorship(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req mentorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.Mentorships.Request(c.Request.Context(), userID, req.MentorID, req.Skill)
	if err != nil {
		h.mentorshipError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// AcceptMentorship activates a pending request. Mentor only.
func (h *Handler) AcceptMentorship(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentorship id"})
		return
	}

	m, err := h.Mentorships.Accept(c.Request.Context(), id, userID)
	if err != nil {
		h.mentorshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// RejectMentorship refunds the learner and removes the request. Mentor only.
func (h *Handler) RejectMentorship(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentorship id"})
		return
	}

	if err := h.Mentorships.Reject(c.Request.Context(), id, userID); err != nil {
		h.mentorshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// CompleteMentorship closes an active mentorship. Learner only.
func (h *Handler) CompleteMentorship(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentorship id"})
		return
	}

	var req completeMentorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.Mentorships.Complete(c.Request.Context(), id, userID, req.Rating, req.Feedback)
	if err != nil {
		h.mentorshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) mentorshipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfMentorship):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot request mentorship from yourself"})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "open mentorship already exists"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "mentorship is not in the required state"})
	case errors.Is(err, service.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	default:
		h.sessionError(c, err)
	}
}
