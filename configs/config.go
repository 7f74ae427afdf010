// Package configs loads posterkit settings from the environment and an
// optional .env file.
package configs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Env string // "development" or "production"

	Gemini    GeminiConfig
	Server    ServerConfig
	Render    RenderConfig
	Portfolio PortfolioConfig
}

// GeminiConfig configures the style-suggestion service.
type GeminiConfig struct {
	APIKey         string
	ModelName      string
	Temperature    float32
	RequestTimeout time.Duration
	Language       string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int
	SessionIdleTTL time.Duration
}

// RenderConfig configures the poster renderer.
type RenderConfig struct {
	MaxDimension int
	FontDir      string
}

// PortfolioConfig selects the portfolio backend. An empty RedisAddr keeps
// saved posters in memory.
type PortfolioConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Key           string
}

// Load reads .env (a missing file is only a warning), then the environment,
// and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "error", err)
	}

	cfg := &Config{
		Env: getEnvOrDefault("POSTERKIT_ENV", "development"),
		Gemini: GeminiConfig{
			APIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
			ModelName:      getEnvOrDefault("GEMINI_MODEL_NAME", "gemini-2.5-flash"),
			Temperature:    float32(getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.7)),
			RequestTimeout: getEnvAsDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
			Language:       getEnvOrDefault("POSTERKIT_LANGUAGE", "English"),
		},
		Server: ServerConfig{
			Port:           getEnvAsIntOrDefault("POSTERKIT_PORT", 8080),
			SessionIdleTTL: getEnvAsDurationOrDefault("SESSION_IDLE_TTL", 2*time.Hour),
		},
		Render: RenderConfig{
			MaxDimension: getEnvAsIntOrDefault("POSTERKIT_MAX_DIMENSION", 1200),
			FontDir:      getEnvOrDefault("POSTERKIT_FONT_DIR", ""),
		},
		Portfolio: PortfolioConfig{
			RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
			RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			Key:           getEnvOrDefault("PORTFOLIO_KEY", "kala_posters"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. A missing API key is allowed: the CLI can
// render saved states and the server can accept client-side suggestions.
func (c *Config) Validate() error {
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be between 0 and 2, got %v", c.Gemini.Temperature)
	}
	if c.Gemini.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("POSTERKIT_PORT must be a valid port, got %d", c.Server.Port)
	}
	if c.Render.MaxDimension < 64 {
		return fmt.Errorf("POSTERKIT_MAX_DIMENSION must be at least 64, got %d", c.Render.MaxDimension)
	}
	if c.Portfolio.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if c.Portfolio.Key == "" {
		return fmt.Errorf("PORTFOLIO_KEY must not be empty")
	}
	return nil
}

// IsProduction reports whether POSTERKIT_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger returns a JSON logger in production and a text logger otherwise.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
