package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Retailer  RetailerConfig  `mapstructure:"retailer"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb"`
}

// VisionConfig holds vision model configuration
type VisionConfig struct {
	Provider          string        `mapstructure:"provider"` // "gemini" or "openai"
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"` // openai only
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CatalogConfig selects the internal product catalog
type CatalogConfig struct {
	Driver string `mapstructure:"driver"` // "static" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

// RetailerConfig holds external retailer API configuration.
// An empty BaseURL selects the built-in simulated retailer list.
type RetailerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// MatchingConfig holds product matching thresholds
type MatchingConfig struct {
	InternalThreshold float64 `mapstructure:"internal_threshold"`
	ExternalThreshold float64 `mapstructure:"external_threshold"`
	MaxResults        int     `mapstructure:"max_results"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // Requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/trendly/")

	// Environment variable settings: TRENDLY_VISION_API_KEY -> vision.api_key
	v.SetEnvPrefix("TRENDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_upload_mb", 10)

	// Vision defaults
	v.SetDefault("vision.provider", "gemini")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "")
	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.timeout", "30s")
	v.SetDefault("vision.max_concurrent", 4)
	v.SetDefault("vision.requests_per_minute", 60)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Catalog defaults
	v.SetDefault("catalog.driver", "static")
	v.SetDefault("catalog.dsn", "")

	// Retailer defaults
	v.SetDefault("retailer.base_url", "")
	v.SetDefault("retailer.api_key", "")

	// Matching defaults
	v.SetDefault("matching.internal_threshold", 0.4)
	v.SetDefault("matching.external_threshold", 0.2)
	v.SetDefault("matching.max_results", 20)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Vision.APIKey == "" {
		return fmt.Errorf("vision API key is required (set TRENDLY_VISION_API_KEY)")
	}

	if config.Vision.Provider != "gemini" && config.Vision.Provider != "openai" {
		return fmt.Errorf("vision provider must be 'gemini' or 'openai', got: %s", config.Vision.Provider)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Catalog.Driver != "static" && config.Catalog.Driver != "sqlite" {
		return fmt.Errorf("catalog driver must be 'static' or 'sqlite', got: %s", config.Catalog.Driver)
	}

	if config.Catalog.Driver == "sqlite" && config.Catalog.DSN == "" {
		return fmt.Errorf("catalog DSN is required when catalog driver is 'sqlite'")
	}

	// Matchers treat a zero threshold as unset, so zero is rejected here
	if config.Matching.InternalThreshold <= 0 || config.Matching.InternalThreshold > 1 {
		return fmt.Errorf("matching internal threshold must be within (0, 1], got: %v", config.Matching.InternalThreshold)
	}

	if config.Matching.ExternalThreshold <= 0 || config.Matching.ExternalThreshold > 1 {
		return fmt.Errorf("matching external threshold must be within (0, 1], got: %v", config.Matching.ExternalThreshold)
	}

	if config.Matching.MaxResults < 1 || config.Matching.MaxResults > 20 {
		return fmt.Errorf("matching max results must be between 1 and 20, got: %d", config.Matching.MaxResults)
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server max upload size must be positive, got: %d", config.Server.MaxUploadMB)
	}

	return nil
}
