package llm

import (
	"bytes"
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"

	"github.com/five82/tubeprep/internal/errors"
)

const (
	defaultOpenAITranscriptionModel = openai.Whisper1
	defaultOpenAIChatModel          = "gpt-4o-mini"
)

// OpenAIConfig captures the settings required to talk to OpenAI.
type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	ChatModel          string
	TimeoutSeconds     int
	RetryAttempts      int
}

// OpenAI uses Whisper for transcription and chat completions for text.
type OpenAI struct {
	client             *openai.Client
	transcriptionModel string
	chatModel          string
	opts               options
}

// NewOpenAI constructs an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig, opts ...Option) *OpenAI {
	o := newOptions(cfg.TimeoutSeconds, cfg.RetryAttempts, opts)

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = o.httpClient

	p := &OpenAI{
		client:             openai.NewClientWithConfig(clientCfg),
		transcriptionModel: strings.TrimSpace(cfg.TranscriptionModel),
		chatModel:          strings.TrimSpace(cfg.ChatModel),
		opts:               o,
	}
	if p.transcriptionModel == "" {
		p.transcriptionModel = defaultOpenAITranscriptionModel
	}
	if p.chatModel == "" {
		p.chatModel = defaultOpenAIChatModel
	}
	return p
}

// Name implements Provider.
func (p *OpenAI) Name() string { return "openai" }

// Transcribe uploads the audio to the transcription endpoint. The prompt is
// not forwarded because Whisper treats it as preceding transcript text.
func (p *OpenAI) Transcribe(ctx context.Context, audio AudioInput) (string, error) {
	if len(audio.Data) == 0 {
		return "", errors.NewLLMError("transcribe: empty audio payload", nil)
	}
	fileName := audio.FileName
	if fileName == "" {
		fileName = "audio.mp3"
	}

	text, err := p.opts.withRetry(ctx, "transcribe "+p.transcriptionModel, func() (string, error) {
		resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    p.transcriptionModel,
			FilePath: fileName,
			Reader:   bytes.NewReader(audio.Data),
			Language: whisperLanguage(audio.Language),
		})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(resp.Text) == "" {
			return "", &emptyContentError{Op: "transcribe"}
		}
		return strings.TrimSpace(resp.Text), nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.NewCancelledError()
		}
		return "", errors.NewLLMError("transcribe with "+p.transcriptionModel, err)
	}
	return text, nil
}

// Generate issues a single-message chat completion.
func (p *OpenAI) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewLLMError("generate: prompt required", nil)
	}
	req := openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		MaxTokens:   cfg.MaxOutputTokens,
	}
	if cfg.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	text, err := p.opts.withRetry(ctx, "generate "+p.chatModel, func() (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		var finishReason string
		for _, choice := range resp.Choices {
			if finishReason == "" {
				finishReason = string(choice.FinishReason)
			}
			if content := strings.TrimSpace(choice.Message.Content); content != "" {
				return content, nil
			}
		}
		return "", &emptyContentError{Op: "generate", FinishReason: finishReason}
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.NewCancelledError()
		}
		return "", errors.NewLLMError("generate with "+p.chatModel, err)
	}
	return text, nil
}

// whisperLanguage reduces a BCP 47 tag to the ISO 639-1 code Whisper expects.
func whisperLanguage(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, confidence := parsed.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
