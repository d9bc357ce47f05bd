package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	NatsURL         string
	NatsToken       string
	DatabaseURL     string
	RedisURL        string
	LedgerTTL       time.Duration
	LogLevel        string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxAttempts     int
	AttemptTimeout  time.Duration
	SearchTimeout   time.Duration
	SlackBotToken   string
	SlackChannel    string
	APIToken        string
}

func Load() Config {
	return Config{
		Port:            envInt("MIMIC_PORT", 8760),
		NatsURL:         envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		RedisURL:        envStr("REDIS_URL", ""),
		LedgerTTL:       envDuration("LEDGER_TTL", 24*time.Hour),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("MIMIC_MODEL", "claude-sonnet-4-20250514"),
		MaxAttempts:     envInt("MIMIC_MAX_ATTEMPTS", 3),
		AttemptTimeout:  envDuration("MIMIC_ATTEMPT_TIMEOUT", 20*time.Second),
		SearchTimeout:   envDuration("MIMIC_SEARCH_TIMEOUT", 5*time.Second),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_REVIEW_CHANNEL", ""),
		APIToken:        envStr("MIMIC_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("20s", "1h30m").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
