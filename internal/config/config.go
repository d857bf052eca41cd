package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries all runtime settings, read once at startup.
type AppConfig struct {
	// WeatherAPIKey is the fallback provider credential. The primary
	// provider needs none.
	WeatherAPIKey string

	// UserAgent identifies this application to the primary provider, which
	// rejects anonymous clients.
	UserAgent string

	// CacheTTL is the freshness window for cached snapshots.
	CacheTTL time.Duration

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// RefreshInterval drives the background cache warmer; 0 disables it.
	RefreshInterval time.Duration

	// LocationsFile optionally adds locations beyond the built-in set.
	LocationsFile string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.UserAgent = getenvDefault("SILA_USER_AGENT", "sila-weather/1.0 github.com/nunatech/sila")
	cfg.LocationsFile = os.Getenv("SILA_LOCATIONS_FILE")
	cfg.Port = getenvDefault("PORT", "8080")

	ttl, err := getenvDuration("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = ttl

	timeout, err := getenvDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	refresh, err := getenvDuration("REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
