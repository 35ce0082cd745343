package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        int
	ChatDir     string
	OutDir      string
	LogsDir     string
	ContextDir  string
	SelfName    string
	Source      string
	LogLevel    string
	XAIAPIKey   string
	XAIModel    string
	DatabaseURL string
	NatsURL     string
	NatsToken   string
}

func Load() Config {
	return Config{
		Port:        envInt("SCRUB_PORT", 8760),
		ChatDir:     envStr("SCRUB_CHAT_DIR", "raw_chats"),
		OutDir:      envStr("SCRUB_OUT_DIR", "cleaned_chats"),
		LogsDir:     envStr("SCRUB_LOGS_DIR", "logs"),
		ContextDir:  envStr("SCRUB_CONTEXT_DIR", "out"),
		SelfName:    envStr("SCRUB_SELF", "Iomar"),
		Source:      envStr("SCRUB_SOURCE", "whatsapp"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		XAIAPIKey:   envStr("XAI_API_KEY", ""),
		XAIModel:    envStr("SCRUB_MODEL", "grok-4-latest"),
		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),
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
