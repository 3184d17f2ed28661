package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr           string
	BackendURL         string
	BackendTimeout     time.Duration
	RedisAddr          string
	MongoURI           string
	MongoDB            string
	RabbitURL          string
	AuditQueue         string
	OTLPEndpoint       string
	DefaultTenant      string
	LogLevel           string
	SessionTTL         time.Duration
	AttemptTTL         time.Duration
	IdempotencyTTL     time.Duration
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8081"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8080"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 0),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "bff"),
		RabbitURL:          os.Getenv("RABBIT_URL"),
		AuditQueue:         getEnv("AUDIT_QUEUE", "bff.audit.q"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DefaultTenant:      getEnv("DEFAULT_TENANT", "default"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
		AttemptTTL:         getDuration("ATTEMPT_TTL", 30*time.Minute),
		IdempotencyTTL:     getDuration("IDEMPOTENCY_TTL", time.Hour),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d == 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
