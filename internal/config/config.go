package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DatabaseURL        string
	KafkaBrokers       string
	RedisURL           string
	JaegerEndpoint     string
	ProviderName       string
	ProviderTimeout    time.Duration
	WebhookSecret      string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8084"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", "kafka:9092"),
		RedisURL:           getEnv("REDIS_URL", "redis:6379"),
		JaegerEndpoint:     os.Getenv("JAEGER_ENDPOINT"),
		ProviderName:       getEnv("PAYMENT_PROVIDER", "payos"),
		ProviderTimeout:    getDuration("PROVIDER_TIMEOUT", 5*time.Second),
		WebhookSecret:      getEnv("PAYOS_WEBHOOK_SECRET", "change-me"),
		OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		OutboxBatchSize:    getInt("OUTBOX_BATCH_SIZE", 50),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
