package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/processing"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "analyze DIR",
		Short: "Show the metadata of a ScreenStudio recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.Analyze(cmd.Context(), args[0], output)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the metadata as JSON")
	return cmd
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var keep []string

	cmd := &cobra.Command{
		Use:     "organize DIR",
		Aliases: []string{"pre-producao"},
		Short:   "Copy the editing files of a recording into a folder named after its title",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.Organize(cmd.Context(), args[0], keep)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&keep, "files-to-keep", "f", nil, "File to copy from the recording folder (repeatable; default from config)")
	return cmd
}

// processFlags override the [process] config section when set.
type processFlags struct {
	webcam   bool
	noWebcam bool
	position string
	scale    float64
	margin   int
	crf      int
}

func (f *processFlags) options(cmd *cobra.Command, cfg *config.Config) (processing.ComposeOptions, error) {
	opts := processing.ComposeOptionsFromConfig(cfg.Process)
	changed := cmd.Flags().Changed
	if changed("pip-webcam") && changed("no-pip-webcam") {
		return opts, errors.NewConfigError("--pip-webcam and --no-pip-webcam are mutually exclusive")
	}
	if changed("pip-webcam") {
		opts.Webcam = f.webcam
	}
	if changed("no-pip-webcam") {
		opts.Webcam = !f.noWebcam
	}
	if changed("pip-position") {
		if !slices.Contains(config.PipPositions, f.position) {
			return opts, errors.NewConfigError(fmt.Sprintf("unknown pip position %q (valid: %s)", f.position, strings.Join(config.PipPositions, ", ")))
		}
		opts.Position = f.position
	}
	if changed("pip-scale") {
		if f.scale <= 0 || f.scale > 1 {
			return opts, errors.NewConfigError(fmt.Sprintf("pip scale must be in (0, 1], got %g", f.scale))
		}
		opts.Scale = f.scale
	}
	if changed("pip-margin") {
		opts.Margin = f.margin
	}
	if changed("crf") {
		if f.crf < 0 || f.crf > config.MaxCRF {
			return opts, errors.NewConfigError(fmt.Sprintf("crf must be 0-%d, got %d", config.MaxCRF, f.crf))
		}
		opts.CRF = f.crf
	}
	return opts, nil
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process DIR OUTPUT",
		Short: "Compose a recording into one MP4 with a webcam overlay",
		Long: "Combine the display capture, the webcam as picture-in-picture and the microphone " +
			"track of a ScreenStudio recording into an H.264/AAC MP4.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, orch.Config)
			if err != nil {
				return err
			}
			return orch.Compose(cmd.Context(), args[0], args[1], opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&flags.webcam, "pip-webcam", true, "Overlay the webcam as picture-in-picture")
	f.BoolVar(&flags.noWebcam, "no-pip-webcam", false, "Compose without the webcam overlay")
	f.StringVar(&flags.position, "pip-position", config.DefaultPipPosition, "Overlay corner: "+strings.Join(config.PipPositions, ", "))
	f.Float64Var(&flags.scale, "pip-scale", config.DefaultPipScale, "Overlay width as a fraction of the display width")
	f.IntVar(&flags.margin, "pip-margin", config.DefaultPipMargin, "Overlay distance from the edges in pixels")
	f.IntVar(&flags.crf, "crf", config.DefaultCRF, "H.264 quality (lower is better)")
	return cmd
}
