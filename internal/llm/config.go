// Package llm selects a model provider per call and runs structured generation
// against the capability schemas.
package llm

import (
	"os"
	"time"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	// ProviderGoogle is Google Gemini, preferred whenever its key is configured.
	ProviderGoogle Provider = "google"
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 120 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Models  map[Provider]string
	Timeout time.Duration
	// OpenAIBaseURL points the OpenAI client at a compatible endpoint.
	OpenAIBaseURL string
}

// DefaultConfig returns the built-in models and timeout.
func DefaultConfig() *Config {
	return &Config{
		Models: map[Provider]string{
			ProviderGoogle: "gemini-2.5-flash",
			ProviderOpenAI: "gpt-4-turbo-preview",
		},
		Timeout:       DefaultTimeout,
		OpenAIBaseURL: "https://api.openai.com",
	}
}

// ConfigFromEnv applies LLM_TIMEOUT and OPENAI_BASE_URL on top of DefaultConfig.
// Model overrides are read per call by Select.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	return cfg
}

// GetModel returns the model name for a provider
func (c *Config) GetModel(p Provider) string {
	return c.Models[p]
}

// WithModel returns a new Config with a specific model for a provider
func (c *Config) WithModel(p Provider, model string) *Config {
	newConfig := &Config{
		Models:        make(map[Provider]string, len(c.Models)+1),
		Timeout:       c.Timeout,
		OpenAIBaseURL: c.OpenAIBaseURL,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[p] = model
	return newConfig
}
