package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Prepare screen recordings for YouTube",
		Long:          "tubeprep organizes ScreenStudio recordings, removes silence, transcribes audio and generates SEO metadata.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Emit progress and results as JSON lines")
	flags.StringVar(&ctx.logDirFlag, "log-dir", "", "Directory for run logs (overrides the config)")
	flags.BoolVar(&ctx.noLog, "no-log", false, "Disable the run log file")

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newRemoveSilenceCommand(ctx))
	rootCmd.AddCommand(newDetectSilenceCommand(ctx))
	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newSEOCommand(ctx))
	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newPipelineCommand(ctx))
	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd, ctx
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
