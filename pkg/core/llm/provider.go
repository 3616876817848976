package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned when a hosted provider is selected without credentials.
var ErrMissingAPIKey = errors.New("llm: api key not configured")

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// StaticProvider answers every prompt with a fixed response or error. The
// "offline" provider is a StaticProvider that always fails, which sends the
// resolver straight to its rule-based fallback.
type StaticProvider struct {
	Response string
	Err      error
}

var _ Provider = (*StaticProvider)(nil)

// ErrOffline is the error returned by the offline provider.
var ErrOffline = errors.New("llm: offline provider selected")

// NewOfflineProvider returns a provider that never reaches a model.
func NewOfflineProvider() *StaticProvider {
	return &StaticProvider{Err: ErrOffline}
}

func (p *StaticProvider) GenerateResponse(ctx context.Context, _ string, _ string, _ map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}

func (p *StaticProvider) AdaptInstructions(raw string) string {
	return raw
}
