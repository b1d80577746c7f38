package processing

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/fileutil"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/silence"
)

func (o *Orchestrator) silenceProcessor() *silence.Processor {
	return &silence.Processor{
		FFmpeg:     o.FFmpeg,
		TempDir:    o.TempDir,
		OnProgress: o.progressFunc(),
		Duration:   o.duration,
	}
}

func silenceDetails(opts silence.Options, withKeep bool) [][2]string {
	details := [][2]string{
		{"Min silence", formatMs(opts.MinSilenceMs)},
		{"Threshold", fmt.Sprintf("%g dBFS", opts.ThresholdDB)},
	}
	if withKeep {
		details = append(details, [2]string{"Keep silence", formatMs(opts.KeepSilenceMs)})
	}
	return details
}

// RemoveSilence cuts the silent stretches out of input and writes output.
func (o *Orchestrator) RemoveSilence(ctx context.Context, input, output string, opts silence.Options) (*silence.Result, error) {
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "Remove silence",
		InputFile:  input,
		OutputFile: output,
		Details:    silenceDetails(opts, true),
	})

	var result *silence.Result
	err := o.track(ctx, KindRemoveSilence, input, func() (string, error) {
		var err error
		result, err = o.silenceProcessor().Remove(ctx, input, output, opts)
		if err != nil {
			return "", err
		}
		return output, nil
	})
	o.Reporter.ProgressFinished()
	if err != nil {
		return nil, err
	}

	o.Reporter.SilenceComplete(reporter.SilenceSummary{
		InputFile:        filepath.Base(input),
		OutputFile:       filepath.Base(output),
		OriginalSeconds:  result.OriginalSeconds(),
		NewSeconds:       result.NewSeconds(),
		ReductionPercent: result.ReductionPercent(),
		Chunks:           result.Chunks,
		OutputPath:       output,
	})
	return result, nil
}

// DetectSilence lists the silent stretches of input. When jsonOut is set the
// intervals are saved there as JSON.
func (o *Orchestrator) DetectSilence(ctx context.Context, input string, opts silence.Options, jsonOut string) (*silence.Detection, error) {
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "Detect silence",
		InputFile:  input,
		OutputFile: jsonOut,
		Details:    silenceDetails(opts, false),
	})

	var detection *silence.Detection
	err := o.track(ctx, KindDetectSilence, input, func() (string, error) {
		var err error
		detection, err = o.silenceProcessor().DetectFile(ctx, input, opts)
		if err != nil {
			return "", err
		}
		if jsonOut == "" {
			return "", nil
		}
		if err := fileutil.WriteJSON(jsonOut, detection.Intervals()); err != nil {
			return "", errors.NewIOError("save silence report", err)
		}
		return jsonOut, nil
	})
	o.Reporter.ProgressFinished()
	if err != nil {
		return nil, err
	}

	intervals := detection.Intervals()
	ranges := make([]reporter.SilenceRange, len(intervals))
	for i, iv := range intervals {
		ranges[i] = reporter.SilenceRange{Start: iv.Start, End: iv.End, Duration: iv.Duration}
	}
	o.Reporter.SilenceRanges(reporter.SilenceRangesSummary{
		InputFile:     filepath.Base(input),
		LengthSeconds: float64(detection.LengthMs) / 1000,
		Ranges:        ranges,
	})
	if jsonOut != "" {
		o.Reporter.OperationComplete("Silence report saved to " + jsonOut)
	}
	return detection, nil
}
