package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Scraping
	AccessToken        string  // Storefront API token; enables the GraphQL strategy
	RateLimit          float64 // requests per second ceiling
	MaxRetries         int
	BackoffBase        time.Duration
	FallbackToScraping bool
	Timeout            time.Duration
	UserAgent          string
	PageSize           int

	// Storage
	MongoURI    string
	DatabaseURL string
	OutputDir   string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort     string
	APIHost     string
	MetricsPort string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		AccessToken:        getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
		RateLimit:          getEnvAsFloat("RATE_LIMIT", 2),
		MaxRetries:         getEnvAsInt("MAX_RETRIES", 3),
		BackoffBase:        time.Duration(getEnvAsFloat("BACKOFF_BASE_SECONDS", 1)*1000) * time.Millisecond,
		FallbackToScraping: getEnvAsBool("FALLBACK_TO_SCRAPING", true),
		Timeout:            time.Duration(getEnvAsInt("TIMEOUT_SECONDS", 30)) * time.Second,
		UserAgent:          getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
		PageSize:           getEnvAsInt("PAGE_SIZE", 250),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://data/shopcrawl.db"),
		OutputDir:          getEnv("OUTPUT_DIR", "data"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", ""),
		APIPort:            getEnv("API_PORT", "8080"),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		MetricsPort:        getEnv("METRICS_PORT", ""),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}, nil
}

// fileConfig mirrors the recognized keys of the optional YAML config file.
type fileConfig struct {
	AccessToken        *string  `yaml:"access_token"`
	RateLimit          *float64 `yaml:"rate_limit"`
	MaxRetries         *int     `yaml:"max_retries"`
	BackoffBase        *float64 `yaml:"backoff_base"`
	FallbackToScraping *bool    `yaml:"fallback_to_scraping"`
	Timeout            *int     `yaml:"timeout"`
	UserAgent          *string  `yaml:"user_agent"`
	PageSize           *int     `yaml:"page_size"`
	LogLevel           *string  `yaml:"log_level"`
}

// ApplyFile overlays a YAML config file on top of environment settings.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if f.AccessToken != nil {
		c.AccessToken = *f.AccessToken
	}
	if f.RateLimit != nil {
		c.RateLimit = *f.RateLimit
	}
	if f.MaxRetries != nil {
		c.MaxRetries = *f.MaxRetries
	}
	if f.BackoffBase != nil {
		c.BackoffBase = time.Duration(*f.BackoffBase*1000) * time.Millisecond
	}
	if f.FallbackToScraping != nil {
		c.FallbackToScraping = *f.FallbackToScraping
	}
	if f.Timeout != nil {
		c.Timeout = time.Duration(*f.Timeout) * time.Second
	}
	if f.UserAgent != nil {
		c.UserAgent = *f.UserAgent
	}
	if f.PageSize != nil {
		c.PageSize = *f.PageSize
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
