package llm

import (
	"context"
	"errors"
)

// Generator produces text from a prompt and an optional system instruction.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// ErrExternalService wraps every failure of a text-generation provider,
// including output that was expected to be JSON and was not.
var ErrExternalService = errors.New("external service error")

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderGenerator always fails; it stands in when no provider is configured.
type PlaceholderGenerator struct{}

// Generate returns ErrNotConfigured wrapped in ErrExternalService.
func (PlaceholderGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	_ = ctx
	_ = prompt
	_ = system
	return "", errors.Join(ErrExternalService, ErrNotConfigured)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt, system string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt, system string) (string, error) {
	return f(ctx, prompt, system)
}

var (
	_ Generator = PlaceholderGenerator{}
	_ Generator = GeneratorFunc(nil)
)
