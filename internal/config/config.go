// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string

	// LLM provider settings. Groq serves an OpenAI-compatible API; the
	// base URL and model have working defaults.
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	UseMockLLM  bool
	LLMTimeout  time.Duration

	SessionTTL time.Duration

	ChatLog ChatLogConfig
}

// ChatLogConfig controls NDJSON conversation logging.
type ChatLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CHAT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:        getEnv("PORT", "4000"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", ""),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		UseMockLLM:  getEnvBool("USE_MOCK_LLM", false),
		LLMTimeout:  getEnvDuration("LLM_TIMEOUT", 45*time.Second),
		SessionTTL:  getEnvDuration("SESSION_TTL", 0),
		ChatLog: ChatLogConfig{
			Enabled:       getEnvBool("CHAT_LOG_ENABLED", false),
			Dir:           getEnv("CHAT_LOG_DIR", "./data/logs/chats"),
			GlobalEnabled: getEnvBool("CHAT_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CHAT_LOG_GLOBAL_PATH", "./data/logs/chats/all.ndjson"),
			QueueSize:     queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.GroqModel == "" {
		return fmt.Errorf("GROQ_MODEL cannot be empty")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	if c.ChatLog.Enabled && c.ChatLog.Dir == "" {
		return fmt.Errorf("CHAT_LOG_DIR cannot be empty when chat logging is enabled")
	}
	if c.ChatLog.GlobalEnabled && c.ChatLog.GlobalPath == "" {
		return fmt.Errorf("CHAT_LOG_GLOBAL_PATH cannot be empty when global chat logging is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
