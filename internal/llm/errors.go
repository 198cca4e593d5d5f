package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/capability"
)

// MissingCredentialError is returned when no provider key is configured.
type MissingCredentialError struct {
	Keys []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no LLM provider configured: set one of %s", strings.Join(e.Keys, ", "))
}

// GenerationFailedError wraps any failure between dispatching a capability and
// holding a schema-valid, decoded result.
type GenerationFailedError struct {
	Capability capability.Capability
	Provider   Provider
	Cause      error
}

func (e *GenerationFailedError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("generation failed for %s: %v", e.Capability, e.Cause)
	}
	return fmt.Sprintf("generation failed for %s via %s: %v", e.Capability, e.Provider, e.Cause)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Cause
}

// ProviderError is a non-2xx answer from a provider API.
type ProviderError struct {
	Provider Provider
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API returned status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.Status, e.Message)
}
