// Package config loads service settings from defaults, an optional YAML file
// and the environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheBackendFile     = "file"
	CacheBackendDynamoDB = "dynamodb"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// GitHub
	GitHubToken   string `yaml:"github_token"`
	GitHubAPIURL  string `yaml:"github_api_url" validate:"required,url"`
	APITimeout    int    `yaml:"api_timeout" validate:"min=1"` // seconds
	MaxRetries    int    `yaml:"max_retries" validate:"min=0,max=10"`
	EnableRetries bool   `yaml:"enable_retries"`

	// Cache
	CacheDuration     int    `yaml:"cache_duration" validate:"min=0"`      // seconds
	MockCacheDuration int    `yaml:"mock_cache_duration" validate:"min=0"` // seconds
	CacheBackend      string `yaml:"cache_backend" validate:"oneof=file dynamodb memory none"`
	CacheDir          string `yaml:"cache_dir" validate:"required_if=CacheBackend file"`
	CacheTable        string `yaml:"cache_table" validate:"required_if=CacheBackend dynamodb"`

	// AWS
	AWSRegion string `yaml:"aws_region"`
	IsLambda  bool   `yaml:"is_lambda"`

	// Calendar
	CalendarTimezone string `yaml:"calendar_timezone" validate:"required,timezone"`

	// Inbound throttling, 0 disables
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" validate:"min=0"`

	// Observability
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		LogLevel:           "info",
		GitHubAPIURL:       "https://api.github.com/",
		APITimeout:         10,
		MaxRetries:         3,
		CacheDuration:      3600,
		MockCacheDuration:  0,
		CacheBackend:       CacheBackendFile,
		CacheDir:           "./cache",
		AWSRegion:          "us-west-2",
		CalendarTimezone:   "UTC",
		RateLimitPerMinute: 60,
		EnableMetrics:      true,
	}
}

// LoadConfig loads configuration from environment variables, layered over
// the YAML file named by CONFIG_FILE when it is set.
func LoadConfig() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is LoadConfig with an explicit file path; an empty path skips the
// file layer.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	c.GitHubToken = getEnv("GITHUB_TOKEN", c.GitHubToken)
	c.GitHubAPIURL = getEnv("GITHUB_API_URL", c.GitHubAPIURL)
	c.APITimeout = getEnvInt("API_TIMEOUT", c.APITimeout, &errs)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries, &errs)
	c.EnableRetries = getEnvBool("ENABLE_RETRIES", c.EnableRetries)

	c.CacheDuration = getEnvInt("CACHE_DURATION", c.CacheDuration, &errs)
	c.MockCacheDuration = getEnvInt("MOCK_CACHE_DURATION", c.MockCacheDuration, &errs)
	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.CacheDir = getEnv("CACHE_DIR", c.CacheDir)
	c.CacheTable = getEnv("CACHE_TABLE", c.CacheTable)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.CalendarTimezone = getEnv("CALENDAR_TIMEZONE", c.CalendarTimezone)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute, &errs)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)

	return errors.Join(errs...)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Freshness returns the cache time-to-live settings
func (c *Config) Freshness() calendar.Freshness {
	return calendar.Freshness{
		TTL:     time.Duration(c.CacheDuration) * time.Second,
		MockTTL: time.Duration(c.MockCacheDuration) * time.Second,
	}
}

// Timeout returns the per-call GitHub API timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

// Location returns the time zone calendar dates are expressed in
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.CalendarTimezone)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return intVal
}
