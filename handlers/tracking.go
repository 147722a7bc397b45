package handlers

import (
	"errors"
	"net/http"

	"delivery-agent/tracking"

	"github.com/gin-gonic/gin"
)

// StartTracking begins the location watch for this agent session
func StartTracking(c *gin.Context) {
	if err := core.Tracker.Start(); err != nil {
		switch {
		case errors.Is(err, tracking.ErrAlreadyTracking):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, tracking.ErrTrackingUnavailable):
			// Degrade without blocking order management: the UI shows
			// "tracking unavailable" and everything else keeps working.
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location tracking started"})
}

// StopTracking releases the location watch. The UI lifecycle owns this call;
// an order reaching a terminal status never stops the watch by itself.
func StopTracking(c *gin.Context) {
	core.Tracker.Stop()
	c.JSON(http.StatusOK, gin.H{
		"message":           "Location tracking stopped",
		"active_deliveries": core.Store.ActiveDeliveries(),
	})
}
