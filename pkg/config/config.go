// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	LLM           LLMConfig
	Storage       StorageConfig
	Report        ReportConfig
	Mail          MailConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	BaseURL       string
	SessionSecret string
	MaxUploadMB   int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LLMConfig configures the remote chat-completions endpoint.
// The default base URL points at OpenRouter's OpenAI-compatible API.
type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
}

type StorageConfig struct {
	LocalPath string
	IndexPath string
}

// ReportConfig controls rendered-report downloads and retention.
type ReportConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	RetainFor   time.Duration
}

type MailConfig struct {
	ResendAPIKey string
	FromEmail    string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type ProfilingConfig struct {
	Enabled bool
	Port    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
			SessionSecret: getEnv("SESSION_SECRET", "changeme"),
			MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 15),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "paisalens-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("LLM_MODEL", "deepseek/deepseek-chat"),
			RequestTimeout: getEnvAsDuration("LLM_REQUEST_TIMEOUT", 120*time.Second),
			RatePerSecond:  getEnvAsFloat("LLM_RATE_PER_SECOND", 0.5),
			RateBurst:      getEnvAsInt("LLM_RATE_BURST", 2),
		},
		Storage: StorageConfig{
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./data/files"),
			IndexPath: getEnv("SEARCH_INDEX_PATH", "./data/search.bleve"),
		},
		Report: ReportConfig{
			TokenSecret: getEnv("REPORT_TOKEN_SECRET", "changeme"),
			TokenTTL:    getEnvAsDuration("REPORT_TOKEN_TTL", 24*time.Hour),
			RetainFor:   getEnvAsDuration("ANALYSIS_RETENTION", 30*24*time.Hour),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM_EMAIL", "PaisaLens <reports@paisalens.dev>"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Profiling: ProfilingConfig{
			Enabled: getEnvAsBool("PPROF_ENABLED", false),
			Port:    getEnvAsInt("PPROF_PORT", 6060),
		},
	}

	if cfg.LLM.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}

	if cfg.LLM.Model == "" {
		return nil, errors.New("LLM_MODEL is required")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
