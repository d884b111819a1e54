// Package langchain adapts github.com/tmc/langchaingo models to the
// single-prompt text generator used by the report pipeline.
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMistral   = "mistral"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the OpenAI endpoint, e.g. for an OpenAI-compatible gateway.
	BaseURL     string
	MaxTokens   int
	Temperature *float64
}

type Generator struct {
	provider string
	model    llms.Model
	opts     []llms.CallOption
}

// New builds the langchaingo model for cfg.Provider.
func New(cfg Config) (*Generator, error) {
	model, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	return NewFromModel(cfg.Provider, model, cfg.MaxTokens, cfg.Temperature), nil
}

func NewFromModel(provider string, model llms.Model, maxTokens int, temperature *float64) *Generator {
	var opts []llms.CallOption
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	if temperature != nil {
		opts = append(opts, llms.WithTemperature(*temperature))
	}
	return &Generator{provider: provider, model: model, opts: opts}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.opts...)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", g.provider, err)
	}
	return strings.TrimSpace(text), nil
}

func newModel(cfg Config) (llms.Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: API key is not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case ProviderAnthropic:
		return anthropic.New(
			anthropic.WithModel(cfg.Model),
			anthropic.WithToken(cfg.APIKey),
		)
	case ProviderMistral:
		return mistral.New(
			mistral.WithModel(cfg.Model),
			mistral.WithAPIKey(cfg.APIKey),
		)
	default:
		return nil, fmt.Errorf("unsupported langchain provider %q", cfg.Provider)
	}
}
