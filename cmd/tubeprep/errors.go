package main

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/reporter"
)

// configErrors are the validation failures fixable by editing the config.
var configErrors = []error{
	config.ErrInvalidStyle,
	config.ErrInvalidProvider,
	config.ErrInvalidThreshold,
	config.ErrInvalidSilence,
	config.ErrInvalidPosition,
	config.ErrInvalidScale,
	config.ErrInvalidCRF,
	config.ErrInvalidLimit,
}

// reportError renders err through the reporter. Cancellation is silent.
func (c *commandContext) reportError(cmd *cobra.Command, err error) {
	if stderrors.Is(err, context.Canceled) || errors.IsCancelled(err) {
		logging.Info("operation cancelled")
		return
	}
	attrs := []any{"error", err}
	if kind, ok := errors.KindOf(err); ok {
		attrs = append(attrs, "kind", kind.String())
	}
	logging.Error("command failed", attrs...)
	c.reporterFor(cmd).Error(describeError(err))
}

// describeError maps an error to a title, message and suggestion.
func describeError(err error) reporter.ReporterError {
	re := reporter.ReporterError{Title: "Error", Message: err.Error()}

	for _, sentinel := range configErrors {
		if stderrors.Is(err, sentinel) {
			re.Title = "Invalid configuration"
			re.Suggestion = "Fix the value in your config file, then run 'tubeprep config validate'"
			return re
		}
	}

	var core *errors.CoreError
	if !stderrors.As(err, &core) {
		return re
	}
	re.Title = core.Kind.String()
	re.Message = core.Message

	var cmdErr *errors.CommandError
	if stderrors.As(err, &cmdErr) {
		re.Context = strings.TrimSpace(cmdErr.Stderr)
	} else if core.Underlying != nil {
		re.Context = core.Underlying.Error()
	}

	switch core.Kind {
	case errors.KindCommand, errors.KindFFmpeg, errors.KindFFprobeParse:
		re.Suggestion = "Check that ffmpeg and ffprobe are installed: run 'tubeprep doctor'"
	case errors.KindConfig:
		re.Suggestion = "Check the command flags and your config file"
	case errors.KindLLM:
		re.Suggestion = "Check your API key and network connection; 'tubeprep doctor' shows which key is expected"
	case errors.KindNoFilesFound:
		re.Suggestion = "Supported inputs are mp3, m4a, wav, ogg, flac, mp4, mov, mkv, avi and webm files"
	case errors.KindUnsupportedFormat:
		re.Suggestion = "Convert the file to a supported audio or video format first"
	case errors.KindRecording:
		re.Suggestion = "Point tubeprep at a ScreenStudio project directory or its recording folder"
	case errors.KindPath:
		re.Suggestion = "Check that the path exists and is spelled correctly"
	}
	return re
}
