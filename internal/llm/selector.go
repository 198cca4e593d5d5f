package llm

import (
	"os"
	"strings"
)

// Credential and model override environment keys.
const (
	EnvGoogleKey      = "GOOGLE_GENERATIVE_AI_API_KEY"
	EnvGoogleKeyAlias = "GEMINI_API_KEY"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvGoogleModel    = "LLM_GOOGLE_MODEL"
	EnvOpenAIModel    = "LLM_OPENAI_MODEL"
)

// CredentialSource resolves configuration values by key.
type CredentialSource interface {
	Lookup(key string) string
}

// EnvCredentials reads the process environment on every lookup, so rotated keys
// take effect on the next call without a restart.
type EnvCredentials struct{}

func (EnvCredentials) Lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// MapCredentials is a fixed CredentialSource, handy for tests and CLI overrides.
type MapCredentials map[string]string

func (m MapCredentials) Lookup(key string) string {
	return strings.TrimSpace(m[key])
}

// Selection is the provider, model and key chosen for one call.
type Selection struct {
	Provider Provider
	Model    string
	APIKey   string
}

// Select picks Google when its key is present, otherwise OpenAI.
// Both absent yields *MissingCredentialError.
func Select(creds CredentialSource, config *Config) (Selection, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if key := googleKey(creds); key != "" {
		return Selection{
			Provider: ProviderGoogle,
			Model:    modelFor(creds, config, ProviderGoogle, EnvGoogleModel),
			APIKey:   key,
		}, nil
	}
	if key := creds.Lookup(EnvOpenAIKey); key != "" {
		return Selection{
			Provider: ProviderOpenAI,
			Model:    modelFor(creds, config, ProviderOpenAI, EnvOpenAIModel),
			APIKey:   key,
		}, nil
	}
	return Selection{}, &MissingCredentialError{Keys: []string{EnvGoogleKey, EnvOpenAIKey}}
}

// Configured reports whether any provider key is present.
func Configured(creds CredentialSource) bool {
	return googleKey(creds) != "" || creds.Lookup(EnvOpenAIKey) != ""
}

func googleKey(creds CredentialSource) string {
	if key := creds.Lookup(EnvGoogleKey); key != "" {
		return key
	}
	return creds.Lookup(EnvGoogleKeyAlias)
}

func modelFor(creds CredentialSource, config *Config, p Provider, envKey string) string {
	if override := creds.Lookup(envKey); override != "" {
		return override
	}
	return config.GetModel(p)
}
