package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/llm"
)

type fakeProvider struct {
	text string
	err  error
	got  []llm.AudioInput
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Transcribe(_ context.Context, audio llm.AudioInput) (string, error) {
	f.got = append(f.got, audio)
	return f.text, f.err
}

func (f *fakeProvider) Generate(context.Context, string, llm.GenerationConfig) (string, error) {
	return "", nil
}

// mp3Runner writes a small fake MP3 at the output path.
type mp3Runner struct {
	calls [][]string
}

func (r *mp3Runner) Run(_ context.Context, args []string, _ float64, _ ffmpeg.ProgressCallback) error {
	r.calls = append(r.calls, args)
	return os.WriteFile(args[len(args)-1], []byte("converted-mp3"), 0o644)
}

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestTranscribeMP3Inline(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "aula.mp3", 128)

	provider := &fakeProvider{text: "  Olá, pessoal.\n"}
	runner := &mp3Runner{}
	tr := &Transcriber{Provider: provider, FFmpeg: runner, Language: "pt-BR", MaxInlineMB: 1}

	text, err := tr.Transcribe(context.Background(), input)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Olá, pessoal." {
		t.Fatalf("expected trimmed text, got %q", text)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("mp3 input should not be converted, got %v", runner.calls)
	}
	if len(provider.got) != 1 {
		t.Fatalf("expected one provider call, got %d", len(provider.got))
	}
	in := provider.got[0]
	if in.MIMEType != "audio/mp3" || len(in.Data) != 128 || in.FileName != "aula.mp3" {
		t.Fatalf("unexpected audio input %+v", in)
	}
	if in.Language != "pt-BR" || !strings.Contains(in.Prompt, "pt-BR") {
		t.Fatalf("prompt should name the language, got %q", in.Prompt)
	}
}

func TestTranscribeConvertsM4A(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "channel-2-microphone-0.m4a", 64)

	provider := &fakeProvider{text: "texto"}
	runner := &mp3Runner{}
	tr := &Transcriber{Provider: provider, FFmpeg: runner, TempDir: dir}

	if _, err := tr.Transcribe(context.Background(), input); err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one conversion, got %d", len(runner.calls))
	}
	args := strings.Join(runner.calls[0], " ")
	if !strings.Contains(args, "libmp3lame") {
		t.Fatalf("expected audio conversion args, got %s", args)
	}
	got := provider.got[0]
	if got.MIMEType != "audio/mp3" || string(got.Data) != "converted-mp3" {
		t.Fatalf("expected converted payload, got %+v", got)
	}
	if got.Language != "pt-BR" {
		t.Fatalf("expected default language, got %q", got.Language)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "tubeprep_transcribe") {
			t.Fatalf("temp dir %s not cleaned up", e.Name())
		}
	}
}

func TestTranscribeExtractsFromVideo(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "screen.mov", 64)

	runner := &mp3Runner{}
	tr := &Transcriber{Provider: &fakeProvider{text: "ok"}, FFmpeg: runner, TempDir: dir}
	if _, err := tr.Transcribe(context.Background(), input); err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if args := strings.Join(runner.calls[0], " "); !strings.Contains(args, "-map a") {
		t.Fatalf("expected audio extraction args, got %s", args)
	}
}

func TestTranscribeRejectsLargePayload(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "long.wav", 1024*1024+1)

	provider := &fakeProvider{text: "never"}
	tr := &Transcriber{Provider: provider, MaxInlineMB: 1}
	_, err := tr.Transcribe(context.Background(), input)
	if err == nil || !strings.Contains(err.Error(), "remove-silence") {
		t.Fatalf("expected size limit error suggesting remove-silence, got %v", err)
	}
	if len(provider.got) != 0 {
		t.Fatal("provider should not be called for oversized payloads")
	}
}

func TestTranscribeErrors(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", 10)
	mp3 := writeFile(t, dir, "ok.mp3", 10)

	tests := []struct {
		name     string
		provider llm.Provider
		path     string
		kind     errors.ErrorKind
	}{
		{"missing file", &fakeProvider{text: "x"}, filepath.Join(dir, "missing.mp3"), errors.KindPath},
		{"unsupported", &fakeProvider{text: "x"}, txt, errors.KindUnsupportedFormat},
		{"empty text", &fakeProvider{text: "   "}, mp3, errors.KindLLM},
		{"no provider", nil, mp3, errors.KindConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Transcriber{Provider: tt.provider, FFmpeg: &mp3Runner{}}
			_, err := tr.Transcribe(context.Background(), tt.path)
			if !errors.IsKind(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestLanguageName(t *testing.T) {
	if got := LanguageName("pt-BR"); !strings.Contains(got, "Portuguese") || !strings.HasSuffix(got, "(pt-BR)") {
		t.Fatalf("unexpected name %q", got)
	}
	if got := LanguageName("??"); got != "??" {
		t.Fatalf("unparseable tag should pass through, got %q", got)
	}
}

func TestMIMEType(t *testing.T) {
	if MIMEType("a.MP3") != "audio/mp3" || MIMEType("a.flac") != "audio/flac" {
		t.Fatal("unexpected MIME mapping")
	}
	if MIMEType("a.m4a") != "" {
		t.Fatal("m4a must be converted before upload")
	}
}
