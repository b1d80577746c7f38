package llm

import (
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"direct", `{"title":"Direto","tags":["a"]}`, "Direto"},
		{"fenced", "```json\n{\"title\":\"Cerca\",\"tags\":[]}\n```", "Cerca"},
		{"fenced without language", "```\n{\"title\":\"Sem\"}\n```", "Sem"},
		{"prose around object", "Here is the result:\n{\"title\":\"Prosa\"}\nHope it helps!", "Prosa"},
		{"text before fence", "Claro!\n```json\n{\"title\":\"Antes\"}\n```\nfim", "Antes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			if err := DecodeJSON(tt.content, &got); err != nil {
				t.Fatalf("DecodeJSON returned error: %v", err)
			}
			if got.Title != tt.want {
				t.Fatalf("title = %q, want %q", got.Title, tt.want)
			}
		})
	}
}

func TestDecodeJSONArray(t *testing.T) {
	var got []string
	if err := DecodeJSON(`topics: ["um", "dois"]`, &got); err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if len(got) != 2 || got[1] != "dois" {
		t.Fatalf("unexpected array %v", got)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	var target map[string]any
	if err := DecodeJSON("   ", &target); err == nil {
		t.Fatal("expected error for empty payload")
	}
	err := DecodeJSON("no json here at all", &target)
	if err == nil {
		t.Fatal("expected error for prose payload")
	}
	if !strings.Contains(err.Error(), "payload snippet: no json here") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}

func TestSummarizePayloadSnippet(t *testing.T) {
	if got := summarizePayloadSnippet(""); got != "<empty>" {
		t.Fatalf("unexpected empty snippet %q", got)
	}
	if got := summarizePayloadSnippet("a\n\tb   c"); got != "a b c" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
	long := strings.Repeat("é", 200)
	got := summarizePayloadSnippet(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != 163 {
		t.Fatalf("expected 160 runes plus ellipsis, got %d runes", len([]rune(got)))
	}
}
