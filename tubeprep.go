// Package tubeprep provides a Go library for preparing screen recordings for
// YouTube: silence removal, transcription, SEO metadata and ScreenStudio
// project handling.
//
// Basic usage:
//
//	client, err := tubeprep.New(
//	    tubeprep.WithProvider("gemini"),
//	    tubeprep.WithLanguage("pt-BR"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	results, err := client.ConvertTranscribeSEO(ctx, "aula.m4a", "clickbait", 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(results[0].Metadata.Title)
package tubeprep

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/history"
	"github.com/five82/tubeprep/internal/organizer"
	"github.com/five82/tubeprep/internal/processing"
	"github.com/five82/tubeprep/internal/recording"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/seo"
	"github.com/five82/tubeprep/internal/silence"
)

// Re-exported result types.
type (
	Config            = config.Config
	PipelineResult    = processing.PipelineResult
	SEOResult         = processing.SEOResult
	SEOMetadata       = seo.Metadata
	SilenceResult     = silence.Result
	SilenceDetection  = silence.Detection
	OrganizeResult    = organizer.Result
	RecordingMetadata = recording.Metadata
	ComposeOptions    = processing.ComposeOptions
	HistoryJob        = history.Job
	SilenceOptions    = silence.Options
)

// DefaultConfig returns the built-in defaults. Job history is off for
// library use.
func DefaultConfig() Config {
	cfg := config.Default()
	cfg.History.Enabled = false
	return cfg
}

// Client runs tubeprep operations.
type Client struct {
	config  *config.Config
	handler EventHandler
	events  io.Writer
	history history.Recorder
	orch    *processing.Orchestrator
}

// Option configures the client.
type Option func(*Client)

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	c := &Client{config: &cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.config.LLM.APIKey == "" {
		c.config.LLM.APIKey = strings.TrimSpace(os.Getenv(config.APIKeyEnv(c.config.LLM.Provider)))
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	c.history = history.Nop{}
	if c.config.History.Enabled {
		path, err := config.ExpandPath(c.config.Paths.HistoryDB)
		if err != nil {
			return nil, err
		}
		rec, err := history.OpenRecorder(true, path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		c.history = rec
	}

	var reps []reporter.Reporter
	if c.handler != nil {
		reps = append(reps, newEventReporter(c.handler))
	}
	if c.events != nil {
		reps = append(reps, reporter.NewJSONReporterWithWriter(c.events))
	}
	var rep reporter.Reporter = reporter.NullReporter{}
	switch len(reps) {
	case 1:
		rep = reps[0]
	case 2:
		rep = reporter.NewCompositeReporter(reps...)
	}
	c.orch = processing.New(c.config, rep, c.history)
	return c, nil
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		c.config = &cfg
	}
}

// WithProvider selects the language model backend ("gemini" or "openai").
func WithProvider(name string) Option {
	return func(c *Client) {
		c.config.LLM.Provider = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithAPIKey sets the provider API key instead of reading it from the
// environment.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.config.LLM.APIKey = key
	}
}

// WithLanguage sets the BCP 47 tag of the spoken language.
func WithLanguage(tag string) Option {
	return func(c *Client) {
		c.config.Transcription.Language = tag
	}
}

// WithSEOStyle sets the default style for GenerateSEO.
func WithSEOStyle(style string) Option {
	return func(c *Client) {
		c.config.SEO.Style = style
	}
}

// WithHistory records every operation in the SQLite database at path.
func WithHistory(path string) Option {
	return func(c *Client) {
		c.config.History.Enabled = true
		c.config.Paths.HistoryDB = path
	}
}

// WithEventHandler receives progress and result events.
func WithEventHandler(handler EventHandler) Option {
	return func(c *Client) {
		c.handler = handler
	}
}

// WithJSONEvents also writes every event as a JSON line to w, in the format
// of the CLI's --json output.
func WithJSONEvents(w io.Writer) Option {
	return func(c *Client) {
		c.events = w
	}
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return *c.config
}

// Close releases the history database.
func (c *Client) Close() error {
	return c.history.Close()
}

// RemoveSilence writes input to output without its silent stretches.
func (c *Client) RemoveSilence(ctx context.Context, input, output string, opts SilenceOptions) (*SilenceResult, error) {
	return c.orch.RemoveSilence(ctx, input, output, opts)
}

// SilenceOptionsDefault returns the configured silence parameters.
func (c *Client) SilenceOptionsDefault() SilenceOptions {
	return silence.OptionsFromConfig(c.config.Silence)
}

// DetectSilence lists the silent stretches of input.
func (c *Client) DetectSilence(ctx context.Context, input string, opts SilenceOptions) (*SilenceDetection, error) {
	return c.orch.DetectSilence(ctx, input, opts, "")
}

// Transcribe writes the transcript of input to output and returns the text.
// An empty output uses "<name>.transcription.txt".
func (c *Client) Transcribe(ctx context.Context, input, output string) (string, error) {
	_, text, err := c.orch.Transcribe(ctx, input, output)
	return text, err
}

// GenerateSEO writes SEO metadata for a transcript file.
func (c *Client) GenerateSEO(ctx context.Context, transcriptPath, style string, analyze bool) (*SEOResult, error) {
	return c.orch.GenerateSEO(ctx, transcriptPath, style, "", analyze)
}

// ConvertTranscribeSEO runs the full pipeline on a file or directory.
func (c *Client) ConvertTranscribeSEO(ctx context.Context, input, style string, jobs int) ([]PipelineResult, error) {
	return c.orch.ConvertTranscribeSEO(ctx, input, style, jobs)
}

// AnalyzeRecording reads the metadata of a ScreenStudio project.
func (c *Client) AnalyzeRecording(ctx context.Context, dir string) (*RecordingMetadata, error) {
	return c.orch.Analyze(ctx, dir, "")
}

// Organize copies the editing files of a project into a titled folder.
func (c *Client) Organize(ctx context.Context, dir string, keep ...string) (*OrganizeResult, error) {
	return c.orch.Organize(ctx, dir, keep)
}

// Compose flattens a project into one MP4 using the configured layout.
func (c *Client) Compose(ctx context.Context, dir, output string) error {
	return c.orch.Compose(ctx, dir, output, processing.ComposeOptionsFromConfig(c.config.Process))
}

// History returns the most recent jobs, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryJob, error) {
	return c.history.List(ctx, limit)
}

// Event types delivered to an EventHandler.
const (
	EventTypeProgress      = "progress"
	EventTypeWarning       = "warning"
	EventTypeError         = "error"
	EventTypeComplete      = "complete"
	EventTypeBatchComplete = "batch_complete"
)

// Event is implemented by every event.
type Event interface {
	Type() string
}

// EventHandler receives events. Returned errors are ignored.
type EventHandler func(Event) error

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	EventType string
	Time      time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() string { return e.EventType }

// ProgressEvent reports stage progress.
type ProgressEvent struct {
	BaseEvent
	Stage      string
	Percent    float32
	ETASeconds int64
}

// WarningEvent is a non-fatal problem.
type WarningEvent struct {
	BaseEvent
	Message string
}

// ErrorEvent describes a failure.
type ErrorEvent struct {
	BaseEvent
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// CompleteEvent marks a finished operation.
type CompleteEvent struct {
	BaseEvent
	Operation  string
	OutputPath string
}

// BatchCompleteEvent ends a directory run.
type BatchCompleteEvent struct {
	BaseEvent
	SuccessfulCount int
	TotalFiles      int
	Duration        time.Duration
}

// eventReporter adapts EventHandler to the Reporter interface.
type eventReporter struct {
	reporter.NullReporter
	handler EventHandler
	now     func() time.Time
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler, now: time.Now}
}

func (r *eventReporter) base(eventType string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: r.now()}
}

func (r *eventReporter) complete(operation, output string) {
	_ = r.handler(CompleteEvent{BaseEvent: r.base(EventTypeComplete), Operation: operation, OutputPath: output})
}

func (r *eventReporter) Progress(p reporter.ProgressSnapshot) {
	_ = r.handler(ProgressEvent{
		BaseEvent:  r.base(EventTypeProgress),
		Stage:      p.Stage,
		Percent:    p.Percent,
		ETASeconds: int64(p.ETA.Seconds()),
	})
}

func (r *eventReporter) MetadataComplete(s reporter.MetadataSummary) {
	r.complete("analyze", s.OutputPath)
}

func (r *eventReporter) SilenceComplete(s reporter.SilenceSummary) {
	r.complete("remove-silence", s.OutputPath)
}

func (r *eventReporter) SilenceRanges(reporter.SilenceRangesSummary) {
	r.complete("detect-silence", "")
}

func (r *eventReporter) TranscriptionComplete(s reporter.TranscriptionSummary) {
	r.complete("transcribe", s.OutputPath)
}

func (r *eventReporter) SEOComplete(s reporter.SEOSummary) {
	r.complete("seo", s.OutputPath)
}

func (r *eventReporter) OrganizeComplete(s reporter.OrganizeSummary) {
	r.complete("organize", s.Destination)
}

func (r *eventReporter) ComposeComplete(s reporter.ComposeSummary) {
	r.complete("process", s.OutputPath)
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{BaseEvent: r.base(EventTypeWarning), Message: message})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  r.base(EventTypeError),
		Title:      e.Title,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

func (r *eventReporter) BatchComplete(s reporter.BatchSummary) {
	_ = r.handler(BatchCompleteEvent{
		BaseEvent:       r.base(EventTypeBatchComplete),
		SuccessfulCount: s.SuccessfulCount,
		TotalFiles:      s.TotalFiles,
		Duration:        s.TotalDuration,
	})
}
