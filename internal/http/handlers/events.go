package handlers

import (
	"errors"
	"net/http"

	"github.com/mijwad7/elevateHub/internal/service"

	"github.com/gin-gonic/gin"
)

type upvoteEvent struct {
	Kind     string `json:"kind" binding:"required,oneof=post comment resource"`
	TargetID int64  `json:"target_id" binding:"required"`
	OwnerID  int64  `json:"owner_id" binding:"required"`
	Title    string `json:"title" binding:"required"`
}

type downloadEvent struct {
	ResourceID int64  `json:"resource_id" binding:"required"`
	OwnerID    int64  `json:"owner_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
}

// ReportUpvote records a first-upvote reward for the content owner. Repeat
// reports for the same target are accepted and change nothing.
func (h *Handler) ReportUpvote(c *gin.Context) {
	var req upvoteEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Events.Dispatch(c.Request.Context(), service.UpvoteAdded{
		Kind:     req.Kind,
		TargetID: req.TargetID,
		OwnerID:  req.OwnerID,
		Title:    req.Title,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "owner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event not processed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// ReportDownload records a first-download reward for the resource uploader.
func (h *Handler) ReportDownload(c *gin.Context) {
	var req downloadEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Events.Dispatch(c.Request.Context(), service.ResourceDownloaded{
		ResourceID: req.ResourceID,
		OwnerID:    req.OwnerID,
		Title:      req.Title,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "owner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event not processed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
