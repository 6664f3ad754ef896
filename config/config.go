package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string // default: 8080

	// Database
	PostgresDSN string

	// Cache
	RedisAddr string

	// Generation provider
	GroqAPIKey        string
	Model             string        // default: llama-3.1-8b-instant
	MaxOutputTokens   int           // default: 1024
	GenerationTimeout time.Duration // default: 60s

	// Tenancy
	DefaultMonthlyQuota int     // requests per month on the free plan, default: 1000
	UnitRateUSD         float64 // cost per token, default: 0.0001

	// Observability
	OTELExporterType     string // "stdout" or "otlp"
	OTELExporterEndpoint string // default: "localhost:4317"
}

func Load() (*Config, error) {
	// Load .env file if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		Model:                getEnv("GENERATION_MODEL", "llama-3.1-8b-instant"),
		OTELExporterType:     getEnv("OTEL_EXPORTER_TYPE", "stdout"),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
	}

	maxTokens, err := strconv.Atoi(getEnv("MAX_OUTPUT_TOKENS", "1024"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_OUTPUT_TOKENS: %w", err)
	}
	cfg.MaxOutputTokens = maxTokens

	timeoutSec, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT_SECONDS: %w", err)
	}
	cfg.GenerationTimeout = time.Duration(timeoutSec) * time.Second

	quota, err := strconv.Atoi(getEnv("DEFAULT_MONTHLY_QUOTA", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MONTHLY_QUOTA: %w", err)
	}
	cfg.DefaultMonthlyQuota = quota

	rate, err := strconv.ParseFloat(getEnv("UNIT_RATE_USD", "0.0001"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UNIT_RATE_USD: %w", err)
	}
	cfg.UnitRateUSD = rate

	// Validation
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
