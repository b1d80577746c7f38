package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/five82/tubeprep/internal/discovery"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/seo"
	"github.com/five82/tubeprep/internal/util"
	"github.com/five82/tubeprep/internal/worker"
)

// PipelineResult is the outcome of convert-transcribe-seo for one input.
type PipelineResult struct {
	Input    string
	Paths    util.PipelinePaths
	Metadata *seo.Metadata
	Err      error
}

// ResolveInputs returns the files the pipeline runs on: input itself, or the
// media files inside it when it is a directory.
func ResolveInputs(input string) ([]string, error) {
	if util.DirectoryExists(input) {
		found, err := discovery.FindMediaFiles(input)
		if err != nil {
			return nil, err
		}
		for _, s := range found.Superseded {
			logging.Info("skipping file with existing mp3", "file", s)
		}
		return found.Files, nil
	}
	if !util.FileExists(input) {
		return nil, errors.NewPathError("input not found: " + input)
	}
	if !util.IsMediaPath(input) {
		return nil, errors.NewUnsupportedFormatError(util.Ext(input))
	}
	return []string{input}, nil
}

// ConvertTranscribeSEO converts input to mp3, transcribes it and generates
// SEO metadata in style. A directory input is processed file by file on up
// to jobs workers. The error is non-nil when no file succeeded.
func (o *Orchestrator) ConvertTranscribeSEO(ctx context.Context, input, style string, jobs int) ([]PipelineResult, error) {
	if style == "" {
		style = o.Config.SEO.PipelineStyle
	}
	if !seo.ValidStyle(style) {
		return nil, errors.NewConfigError("unknown SEO style " + style)
	}
	files, err := ResolveInputs(input)
	if err != nil {
		return nil, err
	}
	if _, err := o.Provider(); err != nil {
		return nil, err
	}

	if len(files) == 1 {
		res := o.runPipeline(ctx, files[0], style)
		if res.Err != nil {
			return []PipelineResult{res}, res.Err
		}
		o.Reporter.OperationComplete("Pipeline finished for " + filepath.Base(files[0]))
		return []PipelineResult{res}, nil
	}
	return o.runBatch(ctx, files, style, jobs)
}

func (o *Orchestrator) runBatch(ctx context.Context, files []string, style string, jobs int) ([]PipelineResult, error) {
	start := time.Now()
	jobs = util.ClampJobs(jobs)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	o.Reporter.BatchStarted(reporter.BatchStartInfo{TotalFiles: len(files), FileList: names, Jobs: jobs})

	results := make([]PipelineResult, len(files))
	pool := worker.Pool{
		Jobs: jobs,
		OnDone: func(i int, err error, p worker.Progress) {
			o.Reporter.FileProgress(reporter.FileProgressContext{
				CurrentFile: p.Complete,
				TotalFiles:  p.Total,
				Filename:    names[i],
			})
			if err != nil {
				o.Reporter.Warning(fmt.Sprintf("%s failed: %v", names[i], err))
			}
		},
	}
	outcomes := worker.Run(ctx, pool, files, func(ctx context.Context, i int, file string) error {
		results[i] = o.runPipeline(ctx, file, style)
		return results[i].Err
	})

	summary := reporter.BatchSummary{TotalFiles: len(files), TotalDuration: time.Since(start)}
	for i, outcome := range outcomes {
		if results[i].Input == "" {
			results[i] = PipelineResult{Input: files[i], Paths: util.ResolvePipelinePaths(files[i]), Err: outcome.Err}
		}
		fr := reporter.FileResult{Filename: names[i], Success: outcome.Err == nil}
		if outcome.Err != nil {
			fr.Detail = outcome.Err.Error()
		} else {
			summary.SuccessfulCount++
		}
		summary.FileResults = append(summary.FileResults, fr)
	}
	o.Reporter.BatchComplete(summary)

	if ctx.Err() != nil {
		return results, errors.NewCancelledError()
	}
	if summary.SuccessfulCount == 0 {
		return results, errors.NewOperationFailedError(fmt.Sprintf("all %d files failed", len(files)), worker.Failed(outcomes)[0].Err)
	}
	return results, nil
}

// runPipeline produces <stem>.mp3, <stem>.txt and <stem>-seo.json beside input.
func (o *Orchestrator) runPipeline(ctx context.Context, input, style string) PipelineResult {
	res := PipelineResult{Input: input, Paths: util.ResolvePipelinePaths(input)}
	res.Err = o.track(ctx, KindPipeline, input, func() (string, error) {
		audio := input
		if util.Ext(input) != ".mp3" {
			if err := o.convert(ctx, input, res.Paths.MP3); err != nil {
				return "", err
			}
			audio = res.Paths.MP3
		}

		text, err := o.transcribeTo(ctx, audio, res.Paths.Transcript)
		if err != nil {
			return "", err
		}
		o.reportTranscript(audio, res.Paths.Transcript, text)

		meta, err := o.seoTo(ctx, text, style, res.Paths.SEO)
		if err != nil {
			return res.Paths.Transcript, err
		}
		res.Metadata = meta
		o.reportSEO(style, meta, res.Paths.SEO)
		return res.Paths.SEO, nil
	})
	return res
}

// convert extracts or re-encodes input to an mp3 at output.
func (o *Orchestrator) convert(ctx context.Context, input, output string) error {
	args, err := ffmpeg.ToMP3(input, output)
	if err != nil {
		return err
	}
	o.Reporter.StageProgress(reporter.StageProgress{
		Stage:   "convert",
		Message: fmt.Sprintf("Converting %s to %s", filepath.Base(input), filepath.Base(output)),
	})
	err = o.FFmpeg.Run(ctx, args, o.duration(ctx, input), o.ffmpegProgress("convert"))
	o.Reporter.ProgressFinished()
	return err
}
