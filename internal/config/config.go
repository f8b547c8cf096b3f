package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	BaseURL     string
	FrontendURL string
	EnableHSTS  bool
	OpenAPIPath string

	// Optional collaborators; empty disables the feature
	DatabaseURL      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int

	AIProvider    string
	AIModel       string
	AIBaseURL     string
	OpenAIKey     string
	GeminiKey     string
	AITemperature float64
	AIMaxTokens   int
	ChatTimeout   time.Duration
	// RequestTimeout bounds a whole HTTP request and always exceeds ChatTimeout
	RequestTimeout time.Duration

	RateLimit string

	AuthJWKSURL  string
	AuthIssuer   string
	AuthAudience string

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// RequestTimeoutMargin is added to CHAT_TIMEOUT when REQUEST_TIMEOUT is unset
const RequestTimeoutMargin = 5 * time.Second

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		OpenAPIPath:      getEnv("OPENAPI_PATH", "api/openapi/openapi.yaml"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		AIProvider:       strings.ToLower(getEnv("AI_PROVIDER", "openai")),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiKey:        getEnv("GEMINI_API_KEY", ""),
		AITemperature:    getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxTokens:      getEnvInt("AI_MAX_TOKENS", 800),
		ChatTimeout:      getEnvDuration("CHAT_TIMEOUT", 30*time.Second),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 0),
		RateLimit:        getEnv("RATE_LIMIT", "20-M"),
		AuthJWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		AuthIssuer:       getEnv("AUTH_ISSUER", ""),
		AuthAudience:     getEnv("AUTH_AUDIENCE", ""),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = cfg.ChatTimeout + RequestTimeoutMargin
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AIProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER must be 'openai' or 'gemini', got %q", c.AIProvider)
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2, got %v", c.AITemperature)
	}
	if c.AIMaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AIMaxTokens)
	}
	if c.ChatTimeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", c.ChatTimeout)
	}
	if c.RequestTimeout <= c.ChatTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must be longer than CHAT_TIMEOUT (%s)", c.RequestTimeout, c.ChatTimeout)
	}
	if c.RabbitMQPrefetch <= 0 {
		return fmt.Errorf("RABBITMQ_PREFETCH must be positive, got %d", c.RabbitMQPrefetch)
	}
	return nil
}

// AIKey returns the API key for the selected provider
func (c *Config) AIKey() string {
	if c.AIProvider == "gemini" {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

// RequireAI reports an error when the selected provider has no API key
func (c *Config) RequireAI() error {
	if c.AIKey() == "" {
		return fmt.Errorf("an API key is required for AI_PROVIDER=%s (set %s)", c.AIProvider, c.aiKeyVar())
	}
	return nil
}

func (c *Config) aiKeyVar() string {
	if c.AIProvider == "gemini" {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// ProviderSettings returns the string settings a provider factory expects
func (c *Config) ProviderSettings(debug bool) map[string]string {
	return map[string]string{
		"api_key":  c.AIKey(),
		"base_url": c.AIBaseURL,
		"model":    c.AIModel,
		"timeout":  c.ChatTimeout.String(),
		"debug":    strconv.FormatBool(debug),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
