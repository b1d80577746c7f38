package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/silence"
)

// silenceFlags are shared by remove-silence and detect-silence. Unset flags
// keep the values from the [silence] config section.
type silenceFlags struct {
	minSilenceMs  int
	thresholdDB   float64
	keepSilenceMs int
}

func (f *silenceFlags) register(cmd *cobra.Command, withKeep bool) {
	cmd.Flags().IntVarP(&f.minSilenceMs, "min-silence", "m", config.DefaultMinSilenceMs, "Minimum silence length in milliseconds")
	cmd.Flags().Float64VarP(&f.thresholdDB, "silence-threshold", "t", config.DefaultThresholdDB, "Silence threshold in dBFS")
	if withKeep {
		cmd.Flags().IntVarP(&f.keepSilenceMs, "keep-silence", "k", config.DefaultKeepSilenceMs, "Silence kept around each chunk in milliseconds")
	}
}

func (f *silenceFlags) options(cmd *cobra.Command, cfg *config.Config) silence.Options {
	opts := silence.OptionsFromConfig(cfg.Silence)
	if cmd.Flags().Changed("min-silence") {
		opts.MinSilenceMs = f.minSilenceMs
	}
	if cmd.Flags().Changed("silence-threshold") {
		opts.ThresholdDB = f.thresholdDB
	}
	if cmd.Flags().Changed("keep-silence") {
		opts.KeepSilenceMs = f.keepSilenceMs
	}
	return opts
}

func newRemoveSilenceCommand(ctx *commandContext) *cobra.Command {
	var flags silenceFlags

	cmd := &cobra.Command{
		Use:   "remove-silence INPUT OUTPUT",
		Short: "Cut silent stretches out of an audio or video file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.RemoveSilence(cmd.Context(), args[0], args[1], flags.options(cmd, orch.Config))
			return err
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newDetectSilenceCommand(ctx *commandContext) *cobra.Command {
	var flags silenceFlags
	var output string

	cmd := &cobra.Command{
		Use:   "detect-silence INPUT",
		Short: "List the silent stretches of an audio or video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.DetectSilence(cmd.Context(), args[0], flags.options(cmd, orch.Config), output)
			return err
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the silent ranges as JSON")
	return cmd
}
