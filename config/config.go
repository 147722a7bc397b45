package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the agent's runtime settings, read once at startup.
type Config struct {
	BackendURL      string
	APIToken        string
	Port            string
	PollInterval    time.Duration // notification poll cadence
	RefreshInterval time.Duration // delivery dashboard refresh cadence

	// Simulated position source, used when no GPS device is attached.
	SimStartLat float64
	SimStartLng float64
	SimSpeedMPS float64
	SimHeading  float64
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️ invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return f
}

// Load reads the agent configuration from the environment with sensible
// development fallbacks.
func Load() Config {
	cfg := Config{
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8000/api"),
		APIToken:        getEnv("BACKEND_TOKEN", ""),
		Port:            getEnv("PORT", "8090"),
		PollInterval:    getEnvDuration("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
		RefreshInterval: getEnvDuration("ORDER_REFRESH_INTERVAL", 30*time.Second),
		SimStartLat:     getEnvFloat("SIM_START_LAT", 12.9716),
		SimStartLng:     getEnvFloat("SIM_START_LNG", 77.5946),
		SimSpeedMPS:     getEnvFloat("SIM_SPEED_MPS", 8.0),
		SimHeading:      getEnvFloat("SIM_HEADING", 45.0),
	}
	if cfg.BackendURL == "" {
		log.Fatal("BACKEND_URL must not be empty")
	}
	return cfg
}
