// Package generation adapts the external text-generation capability.
//
// Generation is best-effort in recalld: callers absorb ErrUnavailable and
// degrade to raw retrieved context instead of failing the request.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fernwehlabs/recalld/internal/config"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnavailable indicates the generation capability failed or
	// timed out.
	ErrUnavailable = errors.New("generation capability unavailable")
)

// Generator produces natural-language text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service generates text through an OpenAI-compatible chat endpoint via
// langchaingo. It implements Generator.
type Service struct {
	llm   llms.Model
	model string
}

// NewService creates a generation service from config.
func NewService(cfg config.GenerationConfig) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}

	apiKey := cfg.APIKey.Value()
	if apiKey == "" {
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &Service{llm: llm, model: cfg.Model}, nil
}

// Generate returns the model's completion for prompt. Any upstream
// failure is reported as ErrUnavailable.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return answer, nil
}
