package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetNotifications returns the current local window and unread badge
func GetNotifications(c *gin.Context) {
	batch := core.Poller.Batch()
	c.JSON(http.StatusOK, gin.H{
		"count":         len(batch.Items),
		"unread_count":  batch.UnreadCount,
		"notifications": batch.Items,
	})
}

// RefreshNotifications forces a fetch, e.g. when the bell dropdown opens
func RefreshNotifications(c *gin.Context) {
	batch, err := core.Poller.Fetch(c.Request.Context())
	if err != nil {
		// Keep serving the previous window; the bell shows stale data over
		// no data.
		c.JSON(http.StatusOK, gin.H{
			"count":         len(batch.Items),
			"unread_count":  batch.UnreadCount,
			"notifications": batch.Items,
			"stale":         true,
			"error":         err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         len(batch.Items),
		"unread_count":  batch.UnreadCount,
		"notifications": batch.Items,
	})
}

// MarkNotificationRead flips one notification to read (optimistic)
func MarkNotificationRead(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}
	core.Poller.MarkRead(c.Request.Context(), uint(id64))
	c.JSON(http.StatusOK, gin.H{
		"message":      "Notification marked read",
		"unread_count": core.Poller.UnreadCount(),
	})
}

// MarkAllNotificationsRead zeroes the unread badge (optimistic)
func MarkAllNotificationsRead(c *gin.Context) {
	core.Poller.MarkAllRead(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"message":      "All notifications marked read",
		"unread_count": 0,
	})
}

// ClearNotifications empties the window — destructive, so it only succeeds
// after server confirmation
func ClearNotifications(c *gin.Context) {
	if err := core.Poller.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Clear failed, notifications kept",
			"reason": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications cleared"})
}
