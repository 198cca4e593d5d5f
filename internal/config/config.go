// Package config loads the optimizer server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort       = 8080
	DefaultLLMTimeout = 120 * time.Second
	DefaultCORSOrigin = "*"
	// MaxUploadBytes is the largest document accepted by the upload endpoint.
	MaxUploadBytes = 5 << 20
)

// ServerConfig holds the settings of the HTTP server.
type ServerConfig struct {
	Port         int
	DatabaseURL  string
	LogLevel     string
	LogFormat    string
	LLMTimeout   time.Duration
	CORSOrigin   string
	CookieSecure bool
}

// LoadServerConfig reads PORT, DATABASE_URL, LOG_LEVEL, LOG_FORMAT, LLM_TIMEOUT,
// CORS_ORIGIN and COOKIE_SECURE.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:        DefaultPort,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "json"),
		LLMTimeout:  DefaultLLMTimeout,
		CORSOrigin:  envOr("CORS_ORIGIN", DefaultCORSOrigin),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT: %v", err)
		}
		cfg.LLMTimeout = timeout
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE: %v", err)
		}
		cfg.CookieSecure = secure
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. DATABASE_URL is checked by the commands that need it.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT out of range: %d", c.Port)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("config error: LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	return nil
}

// RequireDatabase fails when no database URL is configured.
func (c *ServerConfig) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	return nil
}

// Addr returns the listen address for Port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
