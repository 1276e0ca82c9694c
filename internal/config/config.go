package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Logger  LoggerConfig
	Auth    AuthConfig
	Session SessionConfig
	Samples SamplesConfig
	S3      S3Config
}

// ServerConfig holds storefront server configuration.
type ServerConfig struct {
	Host          string
	Port          int
	AllowedOrigin string
	CookieSecure  bool
}

// BackendConfig holds the location of the flyer backend REST API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds identity provider configuration.
type AuthConfig struct {
	CognitoRegion   string
	CognitoClientID string
}

// SessionConfig selects where the persisted {user, token} snapshot lives.
type SessionConfig struct {
	Store         string // "memory", "file" or "redis"
	Dir           string
	TTLHours      int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SamplesConfig holds the location of the static sample catalog.
type SamplesConfig struct {
	Path string
}

// S3Config holds AWS S3 configuration for the sample catalog.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "samples/")
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
			CookieSecure:  getEnvAsBool("COOKIE_SECURE", false),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:5000"),
			TimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			CognitoRegion:   getEnv("COGNITO_REGION", "us-east-1"),
			CognitoClientID: getEnv("COGNITO_CLIENT_ID", ""),
		},
		Session: SessionConfig{
			Store:         getEnv("SESSION_STORE", "memory"),
			Dir:           getEnv("SESSION_DIR", "data/sessions"),
			TTLHours:      getEnvAsInt("SESSION_TTL_HOURS", 24*7),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_KEY_PREFIX", "flyer-kart:session:"),
		},
		Samples: SamplesConfig{
			Path: getEnv("SAMPLE_CATALOG_PATH", "data/samples/flyers.jsonl.gz"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "samples/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %s", c.Backend.BaseURL)
	}

	if c.Backend.TimeoutSeconds < 1 {
		return fmt.Errorf("API timeout must be at least 1 second")
	}

	if c.Auth.CognitoClientID == "" {
		return fmt.Errorf("Cognito client ID is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.Session.Store {
	case "memory":
	case "file":
		if c.Session.Dir == "" {
			return fmt.Errorf("session directory is required when session store is file")
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("redis address is required when session store is redis")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory, file, or redis)", c.Session.Store)
	}

	if c.Session.TTLHours < 1 {
		return fmt.Errorf("session TTL must be at least 1 hour")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the backend request timeout.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns how long a persisted session snapshot is kept.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
