package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/tubeprep/internal/errors"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []any{
			map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var body struct {
			Model          string            `json:"model"`
			ResponseFormat map[string]string `json:"response_format"`
			Messages       []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", body.Model)
		}
		if body.ResponseFormat["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", body.ResponseFormat)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "give me json" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"title":"Olá"}`))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	text, err := client.Generate(context.Background(), "give me json", SEOConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != `{"title":"Olá"}` {
		t.Fatalf("unexpected content %q", text)
	}
}

func TestOpenAIGenerateRetriesServerError(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse("recovered"))
	}))
	defer server.Close()

	rec := &sleepRecorder{}
	client := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL},
		WithRetryBackoff(10*time.Millisecond, time.Second),
		WithSleeper(rec.sleep),
	)
	text, err := client.Generate(context.Background(), "hello", AnalysisConfig())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("unexpected content %q", text)
	}
	if len(rec.delays) != 1 {
		t.Fatalf("expected one retry, got %v", rec.delays)
	}
}

func TestOpenAIGenerateClientErrorNotRetried(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "bad", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), "hello", SEOConfig())
	if !errors.IsKind(err, errors.KindLLM) {
		t.Fatalf("expected LLM error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestOpenAITranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		if got := r.FormValue("language"); got != "pt" {
			t.Errorf("expected language pt, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "talk.mp3" || string(data) != "fake-mp3" {
			t.Errorf("unexpected upload %q (%q)", header.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" Bom dia. "}`))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	text, err := client.Transcribe(context.Background(), AudioInput{
		Data:     []byte("fake-mp3"),
		FileName: "talk.mp3",
		MIMEType: "audio/mpeg",
		Prompt:   "ignored",
		Language: "pt-BR",
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Bom dia." {
		t.Fatalf("unexpected transcription %q", text)
	}
}

func TestOpenAIDefaults(t *testing.T) {
	client := NewOpenAI(OpenAIConfig{APIKey: "sk"})
	if client.transcriptionModel != "whisper-1" || client.chatModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default models %q %q", client.transcriptionModel, client.chatModel)
	}
	if client.Name() != "openai" {
		t.Fatalf("unexpected name %q", client.Name())
	}
}

func TestWhisperLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pt-BR", "pt"},
		{"en", "en"},
		{"es-419", "es"},
		{"", ""},
		{"not a tag!", ""},
	}
	for _, tt := range tests {
		if got := whisperLanguage(tt.in); got != tt.want {
			t.Errorf("whisperLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenAIErrorMentionsModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "sk", BaseURL: server.URL, ChatModel: "gpt-test"})
	_, err := client.Generate(context.Background(), "x", SEOConfig())
	if err == nil || !strings.Contains(err.Error(), "gpt-test") {
		t.Fatalf("expected error naming the model, got %v", err)
	}
}
