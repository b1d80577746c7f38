package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RunLog is the timestamped log file for one CLI invocation.
type RunLog struct {
	file     *os.File
	filePath string
}

// Setup opens a timestamped run log in logDir and installs it as the global
// logger. Returns nil when logging is disabled (noLog=true).
func Setup(logDir string, verbose, noLog bool) (*RunLog, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	filename := fmt.Sprintf("tubeprep_run_%s.log", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	Init(level, file)

	Info("tubeprep starting", "log_file", filePath, "debug", verbose)

	return &RunLog{file: file, filePath: filePath}, nil
}

// Close restores the default global logger and closes the log file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	SetGlobal(nil)
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *RunLog) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Writer returns the log file, or io.Discard when logging is off.
func (l *RunLog) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
