package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mijwad7/elevateHub/internal/repository"

	"github.com/gin-gonic/gin"
)

// ChatImage serves the stored image of a chat message. The content type is
// sniffed from the bytes; clients uploaded them as opaque base64.
func (h *Handler) ChatImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	image, err := h.Chats.GetImage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image unavailable"})
		return
	}

	c.Header("Cache-Control", "private, max-age=86400")
	c.Data(http.StatusOK, http.DetectContentType(image), image)
}
