// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Entitlement store backends.
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"4242"`

	// Public base URL of this server (used for default redirect targets).
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:4242"`

	// Display name prefixed onto payment-backend product names.
	ProductName string `env:"PRODUCT_NAME" envDefault:"Agent 8"`

	// Payment backend (Stripe). Absence disables payment features
	// rather than failing startup.
	StripeSecretKey string        `env:"STRIPE_SECRET_KEY"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`

	// Checkout redirect targets. Defaults are derived from BaseURL.
	SuccessURL string `env:"SUCCESS_URL"`
	CancelURL  string `env:"CANCEL_URL"`

	// Owner override. Either the plain code or an argon2id hash of it
	// may be configured; the hash wins when both are set.
	OwnerAccessCode     string `env:"OWNER_ACCESS_CODE"`
	OwnerAccessCodeHash string `env:"OWNER_ACCESS_CODE_HASH"`

	// Entitlement store
	EntitlementsBackend string `env:"ENTITLEMENTS_BACKEND" envDefault:"file"`
	EntitlementsPath    string `env:"ENTITLEMENTS_PATH" envDefault:"entitlements.json"`
	DatabaseURL         string `env:"DATABASE_URL"`

	// Cache (Redis). Optional; enables entitlement caching and
	// login rate limiting.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the authentication endpoints
	RateLimitLoginEnabled bool `env:"RATE_LIMIT_LOGIN_ENABLED" envDefault:"true"`
	RateLimitLoginRPS     int  `env:"RATE_LIMIT_LOGIN_RPS" envDefault:"5"`
	RateLimitLoginBurst   int  `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB; request bodies are small JSON)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PaymentsEnabled reports whether a payment backend key is configured.
func (c *Config) PaymentsEnabled() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}

// OwnerAccessConfigured reports whether the owner override is usable.
func (c *Config) OwnerAccessConfigured() bool {
	return c.OwnerAccessCode != "" || c.OwnerAccessCodeHash != ""
}

// GetSuccessURL returns the configured success redirect target, or one
// derived from BaseURL.
func (c *Config) GetSuccessURL() string {
	if c.SuccessURL != "" {
		return c.SuccessURL
	}
	return strings.TrimSuffix(c.BaseURL, "/") + "/success.html"
}

// GetCancelURL returns the configured cancel redirect target, or one
// derived from BaseURL.
func (c *Config) GetCancelURL() string {
	if c.CancelURL != "" {
		return c.CancelURL
	}
	return strings.TrimSuffix(c.BaseURL, "/") + "/cancel.html"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if variables are malformed or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EntitlementsBackend {
	case StoreBackendFile, StoreBackendMemory:
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when ENTITLEMENTS_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown ENTITLEMENTS_BACKEND %q", c.EntitlementsBackend)
	}
	return nil
}
