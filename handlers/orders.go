package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"delivery-agent/models"
	"delivery-agent/statemachine"

	"github.com/gin-gonic/gin"
)

// GetAvailableOrders shows unassigned orders ready for pickup, fetched live
func GetAvailableOrders(c *gin.Context) {
	list, err := core.Backend.AvailableOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach backend", "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// GetMyDeliveries returns the agent's current order projections
func GetMyDeliveries(c *gin.Context) {
	list := core.Store.List()
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// PickupOrder confirms the first stage of the delivery flow (→ picked_up)
func PickupOrder(c *gin.Context) {
	transitionTo(c, models.StatusPickedUp, "Order picked up successfully")
}

// DeliverOrder confirms the second stage of the delivery flow (→ delivered)
func DeliverOrder(c *gin.Context) {
	transitionTo(c, models.StatusDelivered, "Order delivered successfully! 🎉")
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus performs an explicit local transition, e.g. starting the
// second stage with out_for_delivery or in_transit
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next := models.ParseStatus(req.Status)
	if next == models.StatusUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + req.Status})
		return
	}
	transitionTo(c, next, "Order status updated")
}

// transitionTo runs a local transition through the state machine, then
// reports it to the backend. The local change is optimistic: a failed push is
// logged and reported, not rolled back — the next dashboard refresh
// reconciles against the server, which always wins.
func transitionTo(c *gin.Context, next models.OrderStatus, message string) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}
	orderID := uint(id64)

	prev, ok := core.Store.Get(orderID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := core.Store.Transition(orderID, next)
	if err != nil {
		var invalid *statemachine.InvalidTransitionError
		var terminal *statemachine.TerminalOrderError
		switch {
		case errors.As(err, &invalid), errors.As(err, &terminal):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":             "Invalid state transition",
				"current_status":    prev.Status,
				"requested":         next,
				"reason":            err.Error(),
				"valid_next_states": statemachine.ValidTransitionsFrom(prev.Status),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	synced := true
	if err := core.Backend.PushOrderStatus(c.Request.Context(), orderID, next); err != nil {
		log.Printf("⚠️ status push failed for order %d (%s → %s), next refresh reconciles: %v",
			orderID, prev.Status, next, err)
		synced = false
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         message,
		"order_id":        order.ID,
		"previous_status": prev.Status,
		"status":          order.Status,
		"synced":          synced,
	})
}
