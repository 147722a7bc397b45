package handlers

import (
	"net/http"
	"time"

	"delivery-agent/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStatus returns one snapshot of everything the dashboard header needs:
// tracking state, unread badge, active deliveries.
func GetStatus(c *gin.Context) {
	lastSync, pollErr := core.Poller.LastSync()
	snapshot := core.Tracker.Snapshot()

	resp := gin.H{
		"tracking":          snapshot,
		"unread_count":      core.Poller.UnreadCount(),
		"active_deliveries": core.Store.ActiveDeliveries(),
		"open_issues":       core.Store.OpenIssues(),
	}
	if !lastSync.IsZero() {
		resp["notifications_synced_at"] = lastSync.Format(time.RFC3339)
	}
	if pollErr != nil {
		resp["notification_poll_error"] = pollErr.Error()
	}
	if refreshErr := core.Refresher.LastError(); refreshErr != nil {
		resp["order_refresh_error"] = refreshErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetStateMachineInfo returns the full order lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": string(t.From), "to": string(t.To)})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"absorbing":       []string{"cancelled", "refunded"},
		"terminal_states": []string{"delivered", "cancelled", "refunded"},
		"description":     "Delivery Order Lifecycle State Machine",
	})
}
