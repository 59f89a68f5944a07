package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	MaxTokens     int
	Temperature   float64

	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
	RetryAfterBuffer  time.Duration

	// ModelCallInterval is the minimum spacing between any two model calls
	// in the process, shared across concurrent batches.
	ModelCallInterval time.Duration
	ProgressTTL       time.Duration

	// GradingTriggerLimit caps grading trigger requests per client per minute.
	GradingTriggerLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INKWELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Inkwell API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("gemini.model", "gemini-2.5-flash-lite")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("gemini.max_tokens", 8192)
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("retry.max", 5)
	v.SetDefault("retry.initial_delay", "2s")
	v.SetDefault("retry.max_delay", "60s")
	v.SetDefault("retry.after_buffer", "1s")
	v.SetDefault("model_call_interval", "6s")
	v.SetDefault("progress.ttl", "24h")
	v.SetDefault("grading.trigger_limit", 10)

	initialDelay, err := time.ParseDuration(v.GetString("retry.initial_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid retry initial delay: %w", err)
	}

	maxDelay, err := time.ParseDuration(v.GetString("retry.max_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid retry max delay: %w", err)
	}

	afterBuffer, err := time.ParseDuration(v.GetString("retry.after_buffer"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid retry after buffer: %w", err)
	}

	callInterval, err := time.ParseDuration(v.GetString("model_call_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid model call interval: %w", err)
	}

	progressTTL, err := time.ParseDuration(v.GetString("progress.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		GeminiAPIKey:        v.GetString("gemini.api_key"),
		GeminiModel:         v.GetString("gemini.model"),
		GeminiBaseURL:       v.GetString("gemini.base_url"),
		MaxTokens:           v.GetInt("gemini.max_tokens"),
		Temperature:         v.GetFloat64("gemini.temperature"),
		MaxRetries:          v.GetInt("retry.max"),
		InitialRetryDelay:   initialDelay,
		MaxRetryDelay:       maxDelay,
		RetryAfterBuffer:    afterBuffer,
		ModelCallInterval:   callInterval,
		ProgressTTL:         progressTTL,
		GradingTriggerLimit: v.GetInt("grading.trigger_limit"),
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("gemini api key must be provided")
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return cfg, nil
}
