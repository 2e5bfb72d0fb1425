// Package llm talks to the generative-AI providers used for answers and
// translations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderYandex = "yandex"
	ProviderOllama = "ollama"
)

// ErrUnknownProvider is returned by New for unrecognised provider names.
var ErrUnknownProvider = errors.New("unknown llm provider")

// OpenAI-compatible providers and their base URLs.
var openAICompatibleProviders = map[string]string{
	ProviderGemini: "https://generativelanguage.googleapis.com/v1beta/openai",
	"groq":         "https://api.groq.com/openai/v1",
	"mistral":      "https://api.mistral.ai/v1",
	"together":     "https://api.together.xyz/v1",
	"deepseek":     "https://api.deepseek.com/v1",
}

var defaultModels = map[string]string{
	ProviderGemini: "gemini-1.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderClaude: "claude-sonnet-4-20250514",
	ProviderOllama: "qwen2:0.5b",
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer is a single request/response call to a provider.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (Response, error)
}

// Generator is what the chat service needs from a provider.
type Generator interface {
	Answer(ctx context.Context, prompt string) (string, error)
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	// Extra headers sent by OpenAI-compatible clients (OpenRouter referrer, etc).
	Headers map[string]string

	// Yandex GPT credentials.
	YandexOAuthToken string
	YandexFolderID   string
}

// New builds a Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case ProviderClaude:
		if cfg.APIKey == "" {
			return nil, errors.New("claude: missing API key")
		}
		return NewClaude(cfg.APIKey, cfg.BaseURL, model, cfg.Timeout), nil
	case ProviderYandex:
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("openai: missing API key")
		}
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, model, cfg.Timeout, cfg.Headers), nil
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		// Ollama's OpenAI-compatible endpoint
		return NewOpenAI("ollama", baseURL+"/v1", model, cfg.Timeout, cfg.Headers), nil
	default:
		baseURL, ok := openAICompatibleProviders[provider]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
		}
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: missing API key", provider)
		}
		if model == "" {
			return nil, fmt.Errorf("%s: model is required", provider)
		}
		return NewOpenAI(cfg.APIKey, baseURL, model, cfg.Timeout, cfg.Headers), nil
	}
}

// KnownProviders returns all provider names accepted by New.
func KnownProviders() []string {
	providers := []string{ProviderOpenAI, ProviderClaude, ProviderYandex, ProviderOllama}
	for p := range openAICompatibleProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
