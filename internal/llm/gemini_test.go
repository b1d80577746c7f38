package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/tubeprep/internal/errors"
)

func writeGeminiText(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-1.5-pro:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("expected key query parameter, got %q", got)
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "write a title" {
			t.Errorf("unexpected contents %+v", req.Contents)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.Temperature != 0.7 || req.GenerationConfig.TopK != 40 {
			t.Errorf("unexpected generation config %+v", req.GenerationConfig)
		}
		writeGeminiText(t, w, "  Um título  ")
	}))
	defer server.Close()

	client := NewGemini(GeminiConfig{APIKey: "secret", BaseURL: server.URL + "/"})
	text, err := client.Generate(context.Background(), "write a title", SEOConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Um título" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestGeminiTranscribeSendsInlineAudio(t *testing.T) {
	audio := []byte{0xff, 0xfb, 0x90, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 {
			t.Errorf("expected inline data then prompt, got %d parts", len(parts))
			return
		}
		if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "audio/mp3" {
			t.Errorf("unexpected inline data %+v", parts[0].InlineData)
		} else if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString(audio) {
			t.Errorf("inline data not base64 of payload")
		}
		if parts[1].Text != "transcribe this" {
			t.Errorf("unexpected prompt %q", parts[1].Text)
		}
		if req.GenerationConfig.Temperature != 0.2 || req.GenerationConfig.TopP != 0.8 {
			t.Errorf("expected transcription sampling, got %+v", req.GenerationConfig)
		}
		writeGeminiText(t, w, "Olá a todos.")
	}))
	defer server.Close()

	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"gemini-test"}})
	text, err := client.Transcribe(context.Background(), AudioInput{
		Data:     audio,
		MIMEType: "audio/mp3",
		Prompt:   "transcribe this",
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Olá a todos." {
		t.Fatalf("unexpected transcription %q", text)
	}
}

func TestGeminiTranscribeRejectsEmptyAudio(t *testing.T) {
	client := NewGemini(GeminiConfig{APIKey: "k"})
	_, err := client.Transcribe(context.Background(), AudioInput{Prompt: "x"})
	if !errors.IsKind(err, errors.KindLLM) {
		t.Fatalf("expected LLM error, got %v", err)
	}
}

func TestGeminiRetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
			return
		}
		writeGeminiText(t, w, "ok")
	}))
	defer server.Close()

	rec := &sleepRecorder{}
	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"m1"}},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(50*time.Millisecond, time.Second),
		WithSleeper(rec.sleep),
	)
	text, err := client.Generate(context.Background(), "hi", AnalysisConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(rec.delays) != 1 || rec.delays[0] != 50*time.Millisecond {
		t.Fatalf("expected one base delay, got %v", rec.delays)
	}
}

func TestGeminiHonoursRetryAfterWithCap(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeGeminiText(t, w, "ok")
	}))
	defer server.Close()

	rec := &sleepRecorder{}
	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"m1"}},
		WithRetryBackoff(time.Millisecond, 2*time.Second),
		WithSleeper(rec.sleep),
	)
	if _, err := client.Generate(context.Background(), "hi", SEOConfig()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(rec.delays) != 1 || rec.delays[0] != 2*time.Second {
		t.Fatalf("expected Retry-After capped at 2s, got %v", rec.delays)
	}
}

func TestGeminiRetriesEmptyCandidates(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		writeGeminiText(t, w, "second time")
	}))
	defer server.Close()

	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"m1"}},
		WithSleeper(func(time.Duration) {}),
	)
	text, err := client.Generate(context.Background(), "hi", SEOConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "second time" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGeminiFallsBackToNextModel(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()
		if strings.Contains(r.URL.Path, "retired-model") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"model not found"}}`))
			return
		}
		writeGeminiText(t, w, "from fallback")
	}))
	defer server.Close()

	rec := &sleepRecorder{}
	client := NewGemini(GeminiConfig{
		APIKey:  "k",
		BaseURL: server.URL,
		Models:  []string{"retired-model", "gemini-pro"},
	}, WithSleeper(rec.sleep))

	text, err := client.Generate(context.Background(), "hi", SEOConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "from fallback" {
		t.Fatalf("unexpected text %q", text)
	}
	mu.Lock()
	defer mu.Unlock()
	if seen["/models/retired-model:generateContent"] != 1 {
		t.Fatalf("non-transient failure should not be retried, saw %v", seen)
	}
	if len(rec.delays) != 0 {
		t.Fatalf("expected no retry sleeps, got %v", rec.delays)
	}
}

func TestGeminiAllModelsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request"}}`))
	}))
	defer server.Close()

	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"alpha", "beta"}})
	_, err := client.Generate(context.Background(), "hi", SEOConfig())
	if err == nil {
		t.Fatal("expected error when every model fails")
	}
	if !errors.IsKind(err, errors.KindLLM) {
		t.Fatalf("expected LLM error, got %v", err)
	}
	for _, want := range []string{"alpha", "beta", "all models failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestGeminiCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGeminiText(t, w, "late")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Models: []string{"a", "b"}})
	_, err := client.Generate(ctx, "hi", SEOConfig())
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestGeminiDefaults(t *testing.T) {
	client := NewGemini(GeminiConfig{APIKey: "k", Models: []string{" ", ""}})
	if client.baseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Fatalf("unexpected base url %q", client.baseURL)
	}
	models := client.Models()
	if len(models) != 3 || models[0] != "gemini-1.5-pro" {
		t.Fatalf("expected default model order, got %v", models)
	}
	if client.Name() != "gemini" {
		t.Fatalf("unexpected name %q", client.Name())
	}
}
