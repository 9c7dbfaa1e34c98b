package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	NatsURL        string
	KafkaBrokers   string
	BackendBaseURL string
	GatewayBaseURL string
	Port           string
	IntentTTL      time.Duration
	RequestTimeout time.Duration
}

func Load() *Config {
	// .env is optional and never overrides real env vars.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	backendBaseURL := os.Getenv("BACKEND_BASE_URL")
	if backendBaseURL == "" {
		backendBaseURL = "http://localhost:8000/api"
	}

	gatewayBaseURL := os.Getenv("GATEWAY_BASE_URL")
	if gatewayBaseURL == "" {
		gatewayBaseURL = backendBaseURL
	}

	intentTTL := 24 * time.Hour
	if raw := os.Getenv("INTENT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			intentTTL = time.Duration(hours) * time.Hour
		}
	}

	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		NatsURL:        os.Getenv("NATS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		BackendBaseURL: backendBaseURL,
		GatewayBaseURL: gatewayBaseURL,
		Port:           port,
		IntentTTL:      intentTTL,
		RequestTimeout: 15 * time.Second,
	}
}
