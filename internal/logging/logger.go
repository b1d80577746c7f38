// Package logging provides structured logging for tubeprep.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// Config contains logger configuration options.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultConfig logs warnings and above to stderr.
func DefaultConfig() Config {
	return Config{
		Level:   LevelWarn,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if !cfg.Enabled {
		return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: cfg.Level})
	return &Logger{Logger: slog.New(handler)}
}

// WithComponent returns a logger tagged with a component attribute.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.With("component", name)}
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Global returns the global logger instance.
func Global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = New(DefaultConfig())
	}
	return globalLogger
}

// SetGlobal replaces the global logger. A nil logger restores the default.
func SetGlobal(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Init installs a global logger with the given level and output.
func Init(level slog.Level, w io.Writer) {
	SetGlobal(New(Config{Level: level, Output: w, Enabled: true}))
}

// Debug logs a debug message to the global logger.
func Debug(msg string, args ...any) {
	Global().Debug(msg, args...)
}

// Info logs an informational message to the global logger.
func Info(msg string, args ...any) {
	Global().Info(msg, args...)
}

// Warn logs a warning message to the global logger.
func Warn(msg string, args ...any) {
	Global().Warn(msg, args...)
}

// Error logs an error message to the global logger.
func Error(msg string, args ...any) {
	Global().Error(msg, args...)
}
