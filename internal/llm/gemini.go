package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
)

// GeminiConfig captures the settings required to talk to Gemini.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	// Models are tried in order until one succeeds.
	Models         []string
	TimeoutSeconds int
	RetryAttempts  int
}

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	apiKey  string
	baseURL string
	models  []string
	opts    options
}

// NewGemini constructs a Gemini provider.
func NewGemini(cfg GeminiConfig, opts ...Option) *Gemini {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultGeminiBaseURL
	}
	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = append(models, config.DefaultPreferredModels...)
	}
	return &Gemini{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		models:  models,
		opts:    newOptions(cfg.TimeoutSeconds, cfg.RetryAttempts, opts),
	}
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Models returns the fallback order.
func (g *Gemini) Models() []string { return append([]string(nil), g.models...) }

// Transcribe sends the audio inline followed by the prompt.
func (g *Gemini) Transcribe(ctx context.Context, audio AudioInput) (string, error) {
	if len(audio.Data) == 0 {
		return "", errors.NewLLMError("transcribe: empty audio payload", nil)
	}
	if strings.TrimSpace(audio.Prompt) == "" {
		return "", errors.NewLLMError("transcribe: prompt required", nil)
	}
	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	parts := []geminiPart{
		{InlineData: &geminiInlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio.Data),
		}},
		{Text: audio.Prompt},
	}
	return g.generate(ctx, "transcribe", parts, TranscriptionConfig())
}

// Generate sends a text-only prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewLLMError("generate: prompt required", nil)
	}
	return g.generate(ctx, "generate", []geminiPart{{Text: prompt}}, cfg)
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate walks the model list. Transient failures are retried within a
// model; anything else moves on to the next one.
func (g *Gemini) generate(ctx context.Context, op string, parts []geminiPart, cfg GenerationConfig) (string, error) {
	if g.apiKey == "" {
		return "", errors.NewLLMError(op+": api key required", nil)
	}
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.NewLLMError(op+": encode request", err)
	}

	var failures []error
	for _, model := range g.models {
		text, err := g.opts.withRetry(ctx, op+" "+model, func() (string, error) {
			return g.sendOnce(ctx, op, model, body)
		})
		if err == nil {
			logger().Debug("model request succeeded", "op", op, "model", model, "chars", len(text))
			return text, nil
		}
		if ctx.Err() != nil {
			return "", errors.NewCancelledError()
		}
		logger().Warn("model failed, trying next", "op", op, "model", model, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", model, err))
	}

	return "", errors.NewLLMError(
		fmt.Sprintf("%s: all models failed (%s)", op, strings.Join(g.models, ", ")),
		stderrors.Join(failures...))
}

func (g *Gemini) sendOnce(ctx context.Context, op, model string, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s",
		g.baseURL, url.PathEscape(model), url.Values{"key": {g.apiKey}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return "", redactKey(err, g.apiKey)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			RetryAfter: retryAfter,
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w (payload snippet: %s)", err, summarizePayloadSnippet(string(raw)))
	}
	if parsed.Error != nil {
		return "", &httpStatusError{StatusCode: parsed.Error.Code, Body: parsed.Error.Message}
	}

	var finishReason string
	for _, candidate := range parsed.Candidates {
		if finishReason == "" {
			finishReason = candidate.FinishReason
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}

	empty := &emptyContentError{Op: op, FinishReason: finishReason}
	if parsed.PromptFeedback != nil {
		empty.BlockReason = parsed.PromptFeedback.BlockReason
	}
	return "", empty
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "REDACTED")
		return urlErr
	}
	return err
}
