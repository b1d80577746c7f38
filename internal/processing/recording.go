package processing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/organizer"
	"github.com/five82/tubeprep/internal/recording"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/util"
)

// Analyze extracts the metadata of a ScreenStudio project and saves it to
// jsonOut when set.
func (o *Orchestrator) Analyze(ctx context.Context, dir, jsonOut string) (*recording.Metadata, error) {
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "Analyze",
		InputFile:  dir,
		OutputFile: jsonOut,
	})

	var meta *recording.Metadata
	err := o.track(ctx, KindAnalyze, dir, func() (string, error) {
		var err error
		meta, err = (&recording.Reader{Prober: o.Prober}).Extract(ctx, dir)
		if err != nil {
			return "", err
		}
		if jsonOut == "" {
			return "", nil
		}
		if err := meta.Save(jsonOut); err != nil {
			return "", err
		}
		return jsonOut, nil
	})
	if err != nil {
		return nil, err
	}

	for _, w := range meta.Warnings {
		o.Reporter.Warning(w)
	}
	o.Reporter.MetadataComplete(reporter.MetadataSummary{
		Text:       meta.Summary(),
		Metadata:   meta,
		Warnings:   meta.Warnings,
		OutputPath: jsonOut,
	})
	return meta, nil
}

// Organize copies the editing files of a project into a folder named after
// its SEO title. An empty keep list uses the configured one.
func (o *Orchestrator) Organize(ctx context.Context, dir string, keep []string) (*organizer.Result, error) {
	org := organizer.New(o.Config.Organize)
	org.LockDir = o.TempDir
	if len(keep) > 0 {
		org.KeepFiles = keep
	}
	org.OnFile = func(name string, copied bool) {
		if copied {
			o.Reporter.Verbose("copied " + name)
		}
	}
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation: "Organize",
		InputFile: dir,
		Details:   [][2]string{{"Files", strings.Join(org.KeepFiles, ", ")}},
	})

	var result *organizer.Result
	err := o.track(ctx, KindOrganize, dir, func() (string, error) {
		var err error
		result, err = org.Organize(ctx, dir)
		if err != nil {
			return "", err
		}
		return result.Destination, nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range result.Missing {
		o.Reporter.Warning(fmt.Sprintf("%s not found in the recording folder", name))
	}
	o.Reporter.OrganizeComplete(reporter.OrganizeSummary{
		Title:       result.Title,
		Destination: result.Destination,
		Copied:      result.Copied,
		Missing:     result.Missing,
	})
	return result, nil
}

// ComposeOptions control the picture-in-picture layout.
type ComposeOptions struct {
	Webcam   bool
	Position string
	Scale    float64
	Margin   int
	CRF      int
}

// ComposeOptionsFromConfig converts the [process] config section.
func ComposeOptionsFromConfig(c config.Process) ComposeOptions {
	return ComposeOptions{
		Webcam:   c.PipWebcam,
		Position: c.PipPosition,
		Scale:    c.PipScale,
		Margin:   c.PipMargin,
		CRF:      c.CRF,
	}
}

// Compose flattens a ScreenStudio recording into one MP4: the display, an
// optional webcam overlay and the microphone track.
func (o *Orchestrator) Compose(ctx context.Context, dir, output string, opts ComposeOptions) error {
	start := time.Now()
	layout, err := recording.Locate(dir)
	if err != nil {
		return err
	}
	if layout.Display == "" {
		return errors.NewRecordingError(fmt.Sprintf("%s not found in %s", recording.DisplayFile, dir))
	}
	if util.Ext(output) != ".mp4" {
		return errors.NewUnsupportedFormatError(util.Ext(output))
	}

	webcam := ""
	if opts.Webcam {
		if layout.Webcam == "" {
			o.Reporter.Warning("Webcam recording not found, composing without picture-in-picture")
		} else {
			webcam = layout.Webcam
		}
	}
	if layout.Microphone == "" {
		o.Reporter.Warning("Microphone recording not found, using the display audio")
	}

	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "Process",
		InputFile:  layout.Root,
		OutputFile: output,
		Details: [][2]string{
			{"Webcam", composeWebcamDetail(webcam, opts)},
			{"CRF", fmt.Sprintf("%d", opts.CRF)},
		},
	})

	return o.track(ctx, KindCompose, layout.Root, func() (string, error) {
		display, err := o.Prober.Inspect(ctx, layout.Display)
		if err != nil {
			return "", err
		}
		if !display.HasVideo() {
			return "", errors.NewRecordingError(layout.Display + " has no video stream")
		}
		if layout.Microphone == "" && !display.HasAudio() {
			o.Reporter.Warning("Display recording has no audio track, the output will be silent")
		}
		args, err := ffmpeg.Compose(ffmpeg.ComposeOptions{
			Display:      layout.Display,
			Webcam:       webcam,
			Microphone:   layout.Microphone,
			Output:       output,
			DisplayWidth: display.Video.Width,
			Position:     opts.Position,
			Scale:        opts.Scale,
			Margin:       opts.Margin,
			CRF:          opts.CRF,
		})
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return "", errors.NewIOError("create output directory", err)
		}

		err = o.FFmpeg.Run(ctx, args, display.Duration, o.ffmpegProgress("compose"))
		o.Reporter.ProgressFinished()
		if err != nil {
			return "", err
		}

		size, _ := util.GetFileSize(output)
		o.Reporter.ComposeComplete(reporter.ComposeSummary{
			OutputFile: filepath.Base(output),
			Size:       size,
			Webcam:     webcam != "",
			TotalTime:  time.Since(start),
			OutputPath: output,
		})
		return output, nil
	})
}

func composeWebcamDetail(webcam string, opts ComposeOptions) string {
	if webcam == "" {
		return "off"
	}
	return fmt.Sprintf("%s, %.0f%% of display width", opts.Position, opts.Scale*100)
}
