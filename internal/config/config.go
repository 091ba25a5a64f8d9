package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	LogFormat       string // json or console
	RedisAddr       string
	RedisPassword   string
	CartStoreURL    string
	OrderStoreURL   string
	AuthServiceURL  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// QuiesceWindow is how long a cart line must stay untouched before
	// its quantity is committed upstream.
	QuiesceWindow   time.Duration
	PendingOrderTTL time.Duration
	SessionTTL      time.Duration
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CartStoreURL:    getEnv("CART_STORE_URL", "http://localhost:8081"),
		OrderStoreURL:   getEnv("ORDER_STORE_URL", "http://localhost:8082"),
		AuthServiceURL:  getEnv("AUTH_SERVICE_URL", "http://localhost:8083"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		QuiesceWindow:   getDuration("CART_QUIESCE_WINDOW", 500*time.Millisecond),
		PendingOrderTTL: getDuration("PENDING_ORDER_TTL", 30*time.Minute),
		SessionTTL:      getDuration("SESSION_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// plain integers are taken as milliseconds
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
