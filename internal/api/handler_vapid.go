package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey exposes the public key the frontend needs to subscribe.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		respondError(c, http.StatusNotFound, "Push notifications are not configured")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "public_key": h.webpush.VAPIDPublicKey})
}
