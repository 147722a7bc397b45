package routes

import (
	"delivery-agent/handlers"
	"delivery-agent/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(middleware.RequestID())
	{
		// ── Agent status ───────────────────────────────────────────────
		api.GET("/status", handlers.GetStatus)
		api.GET("/state-machine", handlers.GetStateMachineInfo)

		// ── Location tracking ──────────────────────────────────────────
		api.POST("/tracking/start", handlers.StartTracking)
		api.POST("/tracking/stop", handlers.StopTracking)

		// ── Delivery orders ────────────────────────────────────────────
		api.GET("/orders", handlers.GetMyDeliveries)
		api.GET("/orders/available", handlers.GetAvailableOrders)
		api.PUT("/orders/:id/pickup", handlers.PickupOrder)
		api.PUT("/orders/:id/deliver", handlers.DeliverOrder)
		api.PUT("/orders/:id/status", handlers.UpdateOrderStatus)

		// ── Notification bell ──────────────────────────────────────────
		api.GET("/notifications", handlers.GetNotifications)
		api.POST("/notifications/refresh", handlers.RefreshNotifications)
		api.POST("/notifications/:id/read", handlers.MarkNotificationRead)
		api.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)
		api.POST("/notifications/clear", handlers.ClearNotifications)

		// ── Route schedule ─────────────────────────────────────────────
		api.POST("/route/optimize", handlers.OptimizeRoute)

		// ── Customer cart ──────────────────────────────────────────────
		api.GET("/cart", handlers.GetCart)
		api.POST("/cart/items", handlers.AddCartItem)
		api.DELETE("/cart", handlers.ClearCart)
	}
}
