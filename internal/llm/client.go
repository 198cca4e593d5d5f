package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Request is one structured generation call.
type Request struct {
	System      string
	User        string
	SchemaName  string
	Schema      map[string]any
	Temperature float32
}

// Generator is an abstraction over LLM providers that return schema-shaped JSON.
type Generator interface {
	// GenerateStructured returns the raw JSON text produced for req.
	GenerateStructured(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Factory builds a provider client for a selection.
type Factory func(ctx context.Context, sel Selection) (Generator, error)

// NewFactory returns the production Factory for config.
func NewFactory(config *Config) Factory {
	if config == nil {
		config = DefaultConfig()
	}
	return func(ctx context.Context, sel Selection) (Generator, error) {
		switch sel.Provider {
		case ProviderGoogle:
			return NewGeminiClient(ctx, sel.APIKey, sel.Model)
		case ProviderOpenAI:
			return NewOpenAIClient(sel.APIKey, sel.Model, config.OpenAIBaseURL)
		default:
			return nil, fmt.Errorf("unsupported provider %q", sel.Provider)
		}
	}
}

// ClientPool builds one client per selection and reuses it across calls.
// When a provider's key or model changes, the stale client is closed and replaced.
type ClientPool struct {
	factory Factory

	mu      sync.Mutex
	clients map[Selection]Generator
}

// NewClientPool creates a pool backed by factory.
func NewClientPool(factory Factory) *ClientPool {
	return &ClientPool{
		factory: factory,
		clients: make(map[Selection]Generator),
	}
}

// Get returns the client for sel, constructing it on first use.
func (p *ClientPool) Get(ctx context.Context, sel Selection) (Generator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[sel]; ok {
		return client, nil
	}

	client, err := p.factory(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", sel.Provider, err)
	}

	for existing, stale := range p.clients {
		if existing.Provider == sel.Provider {
			_ = stale.Close()
			delete(p.clients, existing)
		}
	}
	p.clients[sel] = client
	return client, nil
}

// Len reports how many clients are currently held.
func (p *ClientPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Close releases every pooled client.
func (p *ClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for sel, client := range p.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s client: %w", sel.Provider, err))
		}
		delete(p.clients, sel)
	}
	return errors.Join(errs...)
}
