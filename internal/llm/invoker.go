package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/rs/zerolog"
)

// StructuredInvoker runs a capability and returns schema-valid JSON.
type StructuredInvoker interface {
	Invoke(ctx context.Context, c capability.Capability, pair prompts.Pair) ([]byte, error)
}

// Invoker dispatches capabilities to the currently configured provider.
// Provider calls are not retried; a failed call surfaces immediately as GenerationFailedError.
type Invoker struct {
	creds   CredentialSource
	config  *Config
	pool    *ClientPool
	timeout time.Duration
	logger  zerolog.Logger
}

// NewInvoker wires an invoker. A nil config uses DefaultConfig.
func NewInvoker(creds CredentialSource, config *Config, pool *ClientPool, logger zerolog.Logger) *Invoker {
	if config == nil {
		config = DefaultConfig()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		creds:   creds,
		config:  config,
		pool:    pool,
		timeout: timeout,
		logger:  logger,
	}
}

// Configured reports whether a provider key is currently present.
func (inv *Invoker) Configured() bool {
	return Configured(inv.creds)
}

// Invoke generates output for c from pair and validates it against the capability schema.
func (inv *Invoker) Invoke(ctx context.Context, c capability.Capability, pair prompts.Pair) ([]byte, error) {
	schema, err := schemas.For(c)
	if err != nil {
		return nil, err
	}

	sel, err := Select(inv.creds, inv.config)
	if err != nil {
		return nil, err
	}

	fail := func(cause error) error {
		return &GenerationFailedError{Capability: c, Provider: sel.Provider, Cause: cause}
	}

	client, err := inv.pool.Get(ctx, sel)
	if err != nil {
		return nil, fail(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	start := time.Now()
	text, err := client.GenerateStructured(callCtx, Request{
		System:      pair.System,
		User:        pair.User,
		SchemaName:  schema.Name(),
		Schema:      schema.Document(),
		Temperature: c.Temperature(),
	})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("provider call exceeded %s: %w", inv.timeout, err)
		}
		inv.logger.Error().Err(err).
			Str("capability", c.String()).
			Str("provider", string(sel.Provider)).
			Str("model", sel.Model).
			Dur("duration", elapsed).
			Msg("generation failed")
		return nil, fail(err)
	}

	doc := []byte(CleanJSONBlock(text))
	if err := schema.Validate(doc); err != nil {
		inv.logger.Error().Err(err).
			Str("capability", c.String()).
			Str("provider", string(sel.Provider)).
			Int("response_bytes", len(text)).
			Msg("generation rejected by schema")
		return nil, fail(err)
	}

	inv.logger.Debug().
		Str("capability", c.String()).
		Str("provider", string(sel.Provider)).
		Str("model", sel.Model).
		Dur("duration", elapsed).
		Msg("generation succeeded")
	return doc, nil
}

// Generate invokes contract's capability and decodes the result into T.
// Fields not declared on T are rejected.
func Generate[T any](ctx context.Context, inv StructuredInvoker, contract capability.Contract[T], pair prompts.Pair) (*T, error) {
	doc, err := inv.Invoke(ctx, contract.Capability, pair)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()

	var out T
	if err := dec.Decode(&out); err != nil {
		return nil, &GenerationFailedError{
			Capability: contract.Capability,
			Cause:      fmt.Errorf("failed to decode output: %w", err),
		}
	}
	return &out, nil
}
