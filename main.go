package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-agent/client"
	"delivery-agent/config"
	"delivery-agent/handlers"
	"delivery-agent/notifications"
	"delivery-agent/orders"
	"delivery-agent/route"
	"delivery-agent/routes"
	"delivery-agent/tracking"

	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	cfg := config.Load()

	// Core components: backend client, projections, the three loops
	backend := client.New(cfg.BackendURL, cfg.APIToken)
	store := orders.NewStore()

	sampler := &tracking.SimSampler{
		StartLat: cfg.SimStartLat,
		StartLng: cfg.SimStartLng,
		SpeedMPS: cfg.SimSpeedMPS,
		Heading:  cfg.SimHeading,
	}
	tracker := tracking.NewTracker(sampler, backend)
	poller := notifications.NewPoller(backend, cfg.PollInterval)
	refresher := orders.NewRefresher(backend, store, cfg.RefreshInterval)

	if err := poller.Start(); err != nil {
		log.Fatal("Failed to start notification polling:", err)
	}
	if err := refresher.Start(); err != nil {
		log.Fatal("Failed to start order refresh:", err)
	}
	// The location watch starts on demand via the tracking endpoints; its
	// teardown below is session-owned, an order reaching delivered never
	// stops it.

	handlers.Setup(handlers.Deps{
		Backend:   backend,
		Tracker:   tracker,
		Poller:    poller,
		Store:     store,
		Refresher: refresher,
		Optimizer: route.NewOptimizer(backend),
	})

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for the UI shell
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Delivery Agent Realtime Core",
			"version": "1.0.0",
		})
	})

	// Register all routes
	routes.SetupRoutes(r)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("🚀 Agent running on http://localhost:%s (backend: %s)", cfg.Port, cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful teardown: the agent session owns every loop's stop handle
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down agent...")

	tracker.Stop()
	poller.Stop()
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down http server: %v", err)
	}
	log.Println("✅ Agent shut down cleanly")
}
