package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	AnthropicAPIKey  string
	AnthropicModel   string
	FacetTimeoutSecs int
}

func Load() Config {
	return Config{
		Port:             envInt("CALLSCORE_PORT", 8760),
		NatsURL:          envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:  envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   envStr("CALLSCORE_MODEL", "claude-sonnet-4-20250514"),
		FacetTimeoutSecs: envInt("CALLSCORE_FACET_TIMEOUT_SECS", 60),
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
