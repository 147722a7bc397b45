package handlers

import (
	"errors"
	"net/http"

	"delivery-agent/route"

	"github.com/gin-gonic/gin"
)

type OptimizeRouteRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required,min=1"`
}

// OptimizeRoute returns a visiting order for the agent's deliveries. When the
// backend optimizer fails, the schedule view degrades to the naive ascending
// order instead of blocking.
func OptimizeRoute(c *gin.Context) {
	var req OptimizeRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := core.Optimizer.Optimize(c.Request.Context(), req.OrderIDs)
	if err != nil {
		var optErr *route.OptimizationError
		if errors.As(err, &optErr) {
			fallback := route.Fallback(req.OrderIDs)
			c.JSON(http.StatusOK, gin.H{
				"route":    fallback,
				"fallback": true,
				"reason":   optErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": result, "fallback": false})
}
