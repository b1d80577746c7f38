package tubeprep

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/recording"
	"github.com/five82/tubeprep/internal/reporter"
)

func TestNewOptions(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	c, err := New(WithProvider(" OpenAI "), WithLanguage("en-US"), WithSEOStyle("educational"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	cfg := c.Config()
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "from-env" {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Transcription.Language != "en-US" || cfg.SEO.Style != "educational" {
		t.Errorf("options not applied: %+v %+v", cfg.Transcription, cfg.SEO)
	}
	if cfg.History.Enabled {
		t.Error("history should be off by default for library use")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"style", WithSEOStyle("shouty"), config.ErrInvalidStyle},
		{"provider", WithProvider("claude"), config.ErrInvalidProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); !stderrors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOrganizeWithHistoryAndEvents(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "Aula.screenstudio")
	rec := filepath.Join(root, recording.RecordingDirName)
	if err := os.MkdirAll(rec, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		recording.SEOFile:     `{"title": "Minha Aula"}`,
		recording.DisplayFile: "display",
	} {
		if err := os.WriteFile(filepath.Join(rec, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var events []Event
	var jsonOut bytes.Buffer
	c, err := New(
		WithAPIKey("unused"),
		WithJSONEvents(&jsonOut),
		WithHistory(filepath.Join(base, "history.db")),
		WithEventHandler(func(e Event) error {
			events = append(events, e)
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res, err := c.Organize(context.Background(), root, recording.DisplayFile)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if filepath.Base(res.Destination) != "Minha-Aula" {
		t.Errorf("unexpected destination %q", res.Destination)
	}

	if len(events) != 1 {
		t.Fatalf("expected one event, got %v", events)
	}
	done, ok := events[0].(CompleteEvent)
	if !ok || done.Operation != "organize" || done.OutputPath != res.Destination {
		t.Errorf("unexpected event %+v", events[0])
	}

	if !strings.Contains(jsonOut.String(), `"organize_complete"`) {
		t.Errorf("JSON events missing organize_complete:\n%s", jsonOut.String())
	}

	jobs, err := c.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Kind != "organize" || jobs[0].Output != res.Destination {
		t.Errorf("unexpected history %+v", jobs)
	}
}

func TestEventReporter(t *testing.T) {
	var events []Event
	r := newEventReporter(func(e Event) error {
		events = append(events, e)
		return nil
	})
	fixed := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.Progress(reporter.ProgressSnapshot{Stage: "compose", Percent: 42, ETA: 90 * time.Second})
	r.Warning("webcam missing")
	r.Error(reporter.ReporterError{Title: "FFmpeg error", Suggestion: "run doctor"})
	r.BatchComplete(reporter.BatchSummary{SuccessfulCount: 2, TotalFiles: 3})
	r.Verbose("ignored")

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	wantTypes := []string{EventTypeProgress, EventTypeWarning, EventTypeError, EventTypeBatchComplete}
	for i, want := range wantTypes {
		if events[i].Type() != want {
			t.Errorf("event %d type = %q, want %q", i, events[i].Type(), want)
		}
	}
	progress := events[0].(ProgressEvent)
	if progress.ETASeconds != 90 || progress.Time != fixed {
		t.Errorf("unexpected progress event %+v", progress)
	}
	if batch := events[3].(BatchCompleteEvent); batch.SuccessfulCount != 2 || batch.TotalFiles != 3 {
		t.Errorf("unexpected batch event %+v", batch)
	}
}
