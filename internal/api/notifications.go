package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listNotifications returns the authenticated user's notifications
func (h *Handler) listNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

type createNotificationRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	OrderID *int64 `json:"order_id"`
}

// createNotification creates a notification for the authenticated user
func (h *Handler) createNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	n, err := h.notifications.CreateForUser(c.Request.Context(),
		currentUserID(c), req.Title, req.Message, req.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

// markNotificationRead marks one of the user's notifications as read
func (h *Handler) markNotificationRead(c *gin.Context) {
	notificationID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), notificationID, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type deviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// registerDevice stores a push token for the authenticated user
func (h *Handler) registerDevice(c *gin.Context) {
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.notifications.RegisterToken(c.Request.Context(), currentUserID(c), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// removeDevice deletes a push token registration
func (h *Handler) removeDevice(c *gin.Context) {
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.notifications.RemoveToken(c.Request.Context(), currentUserID(c), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
