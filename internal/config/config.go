package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable; every variable has a working default so the server
// runs with no configuration at all.
type Config struct {
	Port         string        // HTTP port to listen on
	LogLevel     string        // logrus level name
	WSSendBuffer int           // per-session outbound queue length
	ExpiryTick   time.Duration // auction end-time check cadence
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	_ = godotenv.Load() // best effort; env vars win anyway

	return Config{
		Port:         getenv("PORT", "8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		WSSendBuffer: getenvInt("WS_SEND_BUFFER", 64),
		ExpiryTick:   time.Duration(getenvInt("EXPIRY_TICK_MS", 1000)) * time.Millisecond,
	}
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
