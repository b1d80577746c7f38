package llm

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/logging"
)

// AudioInput is an audio payload sent for transcription.
type AudioInput struct {
	Data     []byte
	MIMEType string
	// FileName is reported to backends that take multipart uploads.
	FileName string
	// Prompt carries the transcription instructions.
	Prompt string
	// Language is a BCP 47 tag such as "pt-BR".
	Language string
}

// GenerationConfig controls sampling for a text generation request.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	// JSON asks the backend for a JSON object when it supports doing so.
	JSON bool
}

// TranscriptionConfig favours faithful output.
func TranscriptionConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.2, TopP: 0.8, TopK: 40, MaxOutputTokens: 8192}
}

// SEOConfig allows more creative titles and descriptions.
func SEOConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.7, TopP: 0.9, TopK: 40, MaxOutputTokens: 2048, JSON: true}
}

// AnalysisConfig is used for transcript content analysis.
func AnalysisConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.3, TopP: 0.9, TopK: 40, MaxOutputTokens: 4096, JSON: true}
}

// Provider is a language model backend.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audio AudioInput) (string, error)
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// Providers lists the supported provider names.
func Providers() []string {
	return slices.Clone(config.Providers)
}

// New builds the provider selected by cfg.
func New(cfg config.LLM, opts ...Option) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = config.DefaultProvider
	}
	if !slices.Contains(config.Providers, name) {
		return nil, errors.NewConfigError(fmt.Sprintf("unknown llm provider %q (supported: %s)",
			cfg.Provider, strings.Join(config.Providers, ", ")))
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(config.APIKeyEnv(name)))
	}
	if key == "" {
		return nil, errors.NewLLMError(
			fmt.Sprintf("missing API key for %s: set %s or llm.api_key in the config file", name, config.APIKeyEnv(name)), nil)
	}

	switch name {
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == config.DefaultGeminiBaseURL {
			baseURL = ""
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:             key,
			BaseURL:            baseURL,
			TranscriptionModel: cfg.OpenAITranscriptionModel,
			ChatModel:          cfg.OpenAIChatModel,
			TimeoutSeconds:     cfg.TimeoutSeconds,
			RetryAttempts:      cfg.RetryAttempts,
		}, opts...), nil
	default:
		return NewGemini(GeminiConfig{
			APIKey:         key,
			BaseURL:        cfg.BaseURL,
			Models:         cfg.PreferredModels,
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  cfg.RetryAttempts,
		}, opts...), nil
	}
}

func logger() *logging.Logger {
	return logging.Global().WithComponent("llm")
}
