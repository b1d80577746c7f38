// Package errors provides structured error types for tubeprep operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindCommand represents external command execution errors.
	KindCommand
	// KindFFmpeg represents FFmpeg-specific errors.
	KindFFmpeg
	// KindFFprobeParse represents FFprobe output parsing errors.
	KindFFprobeParse
	// KindJSONParse represents JSON parsing errors.
	KindJSONParse
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents no suitable media files found.
	KindNoFilesFound
	// KindOperationFailed represents general operation failures.
	KindOperationFailed
	// KindUnsupportedFormat represents a media extension the tool cannot handle.
	KindUnsupportedFormat
	// KindLLM represents language model request or response failures.
	KindLLM
	// KindAudio represents PCM decoding and silence processing failures.
	KindAudio
	// KindRecording represents an unexpected recording directory layout.
	KindRecording
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindCommand:
		return "Command error"
	case KindFFmpeg:
		return "FFmpeg error"
	case KindFFprobeParse:
		return "FFprobe parse error"
	case KindJSONParse:
		return "JSON parse error"
	case KindConfig:
		return "Configuration error"
	case KindNoFilesFound:
		return "No files found"
	case KindOperationFailed:
		return "Operation failed"
	case KindUnsupportedFormat:
		return "Unsupported format"
	case KindLLM:
		return "Language model error"
	case KindAudio:
		return "Audio error"
	case KindRecording:
		return "Recording error"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for tubeprep operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewFFmpegError creates a new FFmpeg-specific error.
func NewFFmpegError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindFFmpeg, Message: message, Underlying: underlying}
}

// NewFFprobeParseError creates a new FFprobe parsing error.
func NewFFprobeParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindFFprobeParse, Message: message, Underlying: underlying}
}

// NewJSONParseError creates a new JSON parsing error.
func NewJSONParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindJSONParse, Message: message, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewNoFilesFoundError creates an error for when no media files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no supported media files found in %s", dir)}
}

// NewOperationFailedError creates a new general operation failure error.
func NewOperationFailedError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindOperationFailed, Message: message, Underlying: underlying}
}

// NewUnsupportedFormatError creates an error for an unsupported file extension.
func NewUnsupportedFormatError(ext string) *CoreError {
	return &CoreError{Kind: KindUnsupportedFormat, Message: fmt.Sprintf("unsupported format %q", ext)}
}

// NewLLMError creates a new language model error.
func NewLLMError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindLLM, Message: message, Underlying: underlying}
}

// NewAudioError creates a new audio processing error.
func NewAudioError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindAudio, Message: message, Underlying: underlying}
}

// NewRecordingError creates an error for a malformed recording directory.
func NewRecordingError(message string) *CoreError {
	return &CoreError{Kind: KindRecording, Message: message}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost CoreError in the chain.
func KindOf(err error) (ErrorKind, bool) {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind, true
	}
	return 0, false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
