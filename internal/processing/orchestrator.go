// Package processing runs tubeprep operations end to end: it wires the
// domain packages to the reporter and the job history.
package processing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/ffprobe"
	"github.com/five82/tubeprep/internal/history"
	"github.com/five82/tubeprep/internal/llm"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/util"
)

// scratchPrefixes name the temp directories created by the silence and
// transcribe stages.
var scratchPrefixes = []string{"tubeprep_silence", "tubeprep_transcribe"}

// Job kinds recorded in history.
const (
	KindRemoveSilence = "remove-silence"
	KindDetectSilence = "detect-silence"
	KindTranscribe    = "transcribe"
	KindSEO           = "seo"
	KindAnalyze       = "analyze"
	KindOrganize      = "organize"
	KindCompose       = "process"
	KindPipeline      = "convert-transcribe-seo"
)

// Runner runs ffmpeg. *ffmpeg.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, args []string, duration float64, callback ffmpeg.ProgressCallback) error
}

// Prober inspects media files. *ffprobe.Prober satisfies it.
type Prober interface {
	Inspect(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
}

// Orchestrator holds the collaborators shared by every operation.
type Orchestrator struct {
	Config   *config.Config
	Reporter reporter.Reporter
	History  history.Recorder
	FFmpeg   Runner
	Prober   Prober
	// NewProvider builds the language model client on first use.
	NewProvider func() (llm.Provider, error)
	// TempDir holds scratch files; empty uses the system temp dir.
	TempDir string

	providerOnce sync.Once
	provider     llm.Provider
	providerErr  error
}

// New creates an orchestrator using ffmpeg and ffprobe from PATH.
func New(cfg *config.Config, rep reporter.Reporter, rec history.Recorder) *Orchestrator {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if rec == nil {
		rec = history.Nop{}
	}
	return &Orchestrator{
		Config:   cfg,
		Reporter: rep,
		History:  rec,
		FFmpeg:   ffmpeg.DefaultRunner,
		Prober:   ffprobe.Default,
		NewProvider: func() (llm.Provider, error) {
			return llm.New(cfg.LLM)
		},
	}
}

// Provider returns the language model client, building it once.
func (o *Orchestrator) Provider() (llm.Provider, error) {
	o.providerOnce.Do(func() {
		if o.NewProvider == nil {
			o.provider, o.providerErr = llm.New(o.Config.LLM)
			return
		}
		o.provider, o.providerErr = o.NewProvider()
	})
	return o.provider, o.providerErr
}

// PrepareScratch checks that the scratch directory is writable and removes
// scratch directories older than maxAge left behind by interrupted runs.
func (o *Orchestrator) PrepareScratch(maxAge time.Duration) error {
	dir := o.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := util.EnsureDirectoryWritable(dir); err != nil {
		return errors.NewIOError("scratch directory", err)
	}
	for _, prefix := range scratchPrefixes {
		removed, err := util.CleanupStaleTempFiles(dir, prefix, maxAge)
		if err != nil {
			logging.Debug("scratch cleanup failed", "dir", dir, "prefix", prefix, "error", err)
			continue
		}
		if removed > 0 {
			logging.Info("removed stale scratch directories", "dir", dir, "prefix", prefix, "count", removed)
		}
	}
	return nil
}

// track records run in history under kind. History failures are logged and
// never fail the operation.
func (o *Orchestrator) track(ctx context.Context, kind, input string, run func() (string, error)) error {
	id, err := o.History.Start(ctx, kind, input)
	if err != nil {
		logging.Warn("history start failed", "kind", kind, "error", err)
	}
	output, runErr := run()
	if id != "" {
		if err := o.History.Finish(context.WithoutCancel(ctx), id, output, runErr); err != nil {
			logging.Warn("history finish failed", "kind", kind, "id", id, "error", err)
		}
	}
	return runErr
}

// progressFunc adapts stage/percent callbacks to the reporter, starting a new
// bar whenever the stage changes.
func (o *Orchestrator) progressFunc() func(stage string, percent float64) {
	var (
		mu      sync.Mutex
		current string
	)
	return func(stage string, percent float64) {
		mu.Lock()
		defer mu.Unlock()
		if stage != current {
			current = stage
			o.Reporter.ProgressStarted(stage)
		}
		o.Reporter.Progress(reporter.ProgressSnapshot{Stage: stage, Percent: float32(percent)})
	}
}

// ffmpegProgress forwards ffmpeg progress for one stage.
func (o *Orchestrator) ffmpegProgress(stage string) ffmpeg.ProgressCallback {
	o.Reporter.ProgressStarted(stage)
	return func(p ffmpeg.Progress) {
		o.Reporter.Progress(reporter.ProgressSnapshot{
			Stage:   stage,
			Percent: p.Percent,
			Speed:   p.Speed,
			ETA:     p.ETA,
		})
	}
}

// duration probes path for its length in seconds, 0 when unknown.
func (o *Orchestrator) duration(ctx context.Context, path string) float64 {
	info, err := o.Prober.Inspect(ctx, path)
	if err != nil {
		logging.Debug("could not probe duration", "path", path, "error", err)
		return 0
	}
	return info.Duration
}

func formatMs(ms int) string {
	return fmt.Sprintf("%d ms", ms)
}
