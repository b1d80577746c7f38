package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/seo"
)

func validateStyleFlag(style string) error {
	if style == "" || seo.ValidStyle(style) {
		return nil
	}
	return errors.NewConfigError(fmt.Sprintf("unknown SEO style %q (valid: %s)", style, strings.Join(seo.Styles(), ", ")))
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var output, style string
	var withSEO bool

	cmd := &cobra.Command{
		Use:   "transcribe AUDIO",
		Short: "Transcribe an audio or video file",
		Long:  "Transcribe an audio or video file to <name>.transcription.txt, optionally generating SEO metadata afterwards.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStyleFlag(style); err != nil {
				return err
			}
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			transcript, _, err := orch.Transcribe(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			if !withSEO && !ctx.jsonOutput && stdinIsTerminal() {
				withSEO = confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Generate SEO metadata from this transcript?")
			}
			if !withSEO {
				return nil
			}
			_, err = orch.GenerateSEO(cmd.Context(), transcript, style, "", false)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Transcript path (default <name>.transcription.txt)")
	cmd.Flags().BoolVar(&withSEO, "seo", false, "Generate SEO metadata after transcribing")
	cmd.Flags().StringVar(&style, "style", "", "SEO style when --seo is set (default from config)")
	return cmd
}

func newSEOCommand(ctx *commandContext) *cobra.Command {
	var output, style string
	var analyze bool

	cmd := &cobra.Command{
		Use:   "seo TRANSCRIPT",
		Short: "Generate a title, description and tags from a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStyleFlag(style); err != nil {
				return err
			}
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.GenerateSEO(cmd.Context(), args[0], style, output, analyze)
			return err
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", fmt.Sprintf("SEO style: %s (default from config, %s)", strings.Join(seo.Styles(), ", "), config.DefaultSEOStyle))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Metadata path (default <name>.seo.json)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Also extract topics, keywords and key moments")
	return cmd
}

func newPipelineCommand(ctx *commandContext) *cobra.Command {
	var style string
	var jobs int

	cmd := &cobra.Command{
		Use:   "convert-transcribe-seo INPUT",
		Short: "Convert to MP3, transcribe and generate SEO metadata",
		Long: "Convert a media file (or every media file in a directory) to MP3, transcribe it " +
			"and write <name>.mp3, <name>.txt and <name>-seo.json beside the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStyleFlag(style); err != nil {
				return err
			}
			orch, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = orch.ConvertTranscribeSEO(cmd.Context(), args[0], style, jobs)
			return err
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", fmt.Sprintf("SEO style (default from config, %s)", config.DefaultPipelineStyle))
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Files processed in parallel for directory input")
	return cmd
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks a yes/no question. English and Portuguese yes answers count.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "\n%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}
