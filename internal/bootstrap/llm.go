package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/config"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/llm"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/llm/langchain"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/resilience"
)

const (
	providerGemini = "gemini"
	providerOllama = "ollama"
)

var defaultModels = map[string]string{
	langchain.ProviderOpenAI:    "gpt-4o-mini",
	langchain.ProviderAnthropic: "claude-3-5-haiku-latest",
	langchain.ProviderMistral:   "mistral-small-latest",
}

// newTextGenerator builds the provider named by LLM_PROVIDER and wraps it with
// the resilience executor.
func newTextGenerator(cfg config.Config, executor *resilience.Executor, observer llm.CallObserver) (ports.TextGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	temperature := cfg.LLMTemperature

	var next ports.TextGenerator
	switch provider {
	case providerGemini:
		// Without a key every call fails and requests get the fallback summary.
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			slog.Warn("llm_key_missing", "provider", provider, "env", "GEMINI_API_KEY")
		}
		next = gemini.New(gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.LLMModel,
			BaseURL:     cfg.GeminiBaseURL,
			Timeout:     cfg.LLMTimeout,
			Temperature: &temperature,
		})
	case providerOllama:
		model := cfg.OllamaModel
		if cfg.LLMModel != "" {
			model = cfg.LLMModel
		}
		next = ollama.New(cfg.OllamaURL, model, cfg.LLMTimeout).
			WithOptions(map[string]any{"temperature": temperature})
	case langchain.ProviderOpenAI, langchain.ProviderAnthropic, langchain.ProviderMistral:
		model := cfg.LLMModel
		if model == "" {
			model = defaultModels[provider]
		}
		generator, err := langchain.New(langchain.Config{
			Provider:    provider,
			Model:       model,
			APIKey:      providerAPIKey(cfg, provider),
			BaseURL:     cfg.OpenAIBaseURL,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, err
		}
		next = generator
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	return llm.NewGuarded(provider, next, executor, observer, cfg.LLMTimeout), nil
}

func providerAPIKey(cfg config.Config, provider string) string {
	switch provider {
	case langchain.ProviderOpenAI:
		return cfg.OpenAIAPIKey
	case langchain.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case langchain.ProviderMistral:
		return cfg.MistralAPIKey
	default:
		return ""
	}
}
