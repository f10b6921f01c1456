package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Reason)
}

// ErrMissingAPIKey is returned when no completion API credential is configured.
var ErrMissingAPIKey = &ConfigurationError{Key: "DOCCHAT_API_KEY", Reason: "is required"}

type Config struct {
	Port string `toml:"port"`
	// LogLevel is empty unless set by file or env; commands pick their own default.
	LogLevel string `toml:"log_level"`

	// Completion API
	APIKey                string  `toml:"api_key"`
	BaseURL               string  `toml:"base_url"`
	Model                 string  `toml:"model"`
	MaxTokens             int     `toml:"max_tokens"`
	DocumentTemperature   float64 `toml:"document_temperature"`
	ChatTemperature       float64 `toml:"chat_temperature"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`

	// Prompt assembly
	DocumentCharLimit int      `toml:"document_char_limit"`
	DocumentHistory   int      `toml:"document_history"`
	ChatHistory       int      `toml:"chat_history"`
	Keywords          []string `toml:"keywords"`

	// Upload limits
	MaxFileSize int64 `toml:"max_file_size"`

	// HTTP shell
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
	WatchDir           string `toml:"watch_dir"`
}

func Default() *Config {
	return &Config{
		Port:                "8080",
		BaseURL:             "https://api.groq.com/openai/v1",
		Model:               "llama-3.3-70b-versatile",
		MaxTokens:           3000,
		DocumentTemperature: 0.2,
		ChatTemperature:     0.7,
		DocumentCharLimit:   12000,
		DocumentHistory:     4,
		ChatHistory:         6,
		MaxFileSize:         5 * 1024 * 1024,
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.APIKey = getEnv("DOCCHAT_API_KEY", getEnv("GROQ_API_KEY", c.APIKey))
	c.BaseURL = getEnv("DOCCHAT_BASE_URL", c.BaseURL)
	c.Model = getEnv("DOCCHAT_MODEL", c.Model)
	c.MaxTokens = getEnvInt("DOCCHAT_MAX_TOKENS", c.MaxTokens)
	c.RequestTimeoutSeconds = getEnvInt("DOCCHAT_REQUEST_TIMEOUT", c.RequestTimeoutSeconds)
	c.RateLimitPerMinute = getEnvInt("DOCCHAT_RATE_LIMIT", c.RateLimitPerMinute)
	c.WatchDir = getEnv("DOCCHAT_WATCH_DIR", c.WatchDir)

	if keywords := os.Getenv("DOCCHAT_KEYWORDS"); keywords != "" {
		c.Keywords = splitList(keywords)
	}
}

// Validate fails fast on settings that would otherwise surface as confusing
// upstream errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return &ConfigurationError{Key: "base_url", Reason: "must not be empty"}
	}
	if c.Model == "" {
		return &ConfigurationError{Key: "model", Reason: "must not be empty"}
	}
	if c.MaxTokens <= 0 {
		return &ConfigurationError{Key: "max_tokens", Reason: "must be positive"}
	}
	if !validTemperature(c.DocumentTemperature) {
		return &ConfigurationError{Key: "document_temperature", Reason: "must be in (0, 2]"}
	}
	if !validTemperature(c.ChatTemperature) {
		return &ConfigurationError{Key: "chat_temperature", Reason: "must be in (0, 2]"}
	}
	if c.DocumentCharLimit <= 0 || c.DocumentHistory <= 0 || c.ChatHistory <= 0 {
		return &ConfigurationError{Key: "document_char_limit/document_history/chat_history", Reason: "must be positive"}
	}
	if c.MaxFileSize <= 0 {
		return &ConfigurationError{Key: "max_file_size", Reason: "must be positive"}
	}
	if c.RateLimitPerMinute < 0 {
		return &ConfigurationError{Key: "rate_limit_per_minute", Reason: "must not be negative"}
	}
	return nil
}

// Zero is excluded: go-openai drops an empty temperature from the request.
func validTemperature(t float64) bool {
	return t > 0 && t <= 2
}

// RequestTimeout is zero when no client-side timeout applies.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
