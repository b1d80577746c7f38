// Package config provides configuration types, defaults and loading for tubeprep.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Default constants
const (
	// DefaultLogDir is where run logs are written.
	DefaultLogDir = "~/.local/share/tubeprep/logs"

	// DefaultHistoryDB is the SQLite job history database.
	DefaultHistoryDB = "~/.local/share/tubeprep/history.db"

	// DefaultProvider is the language model backend.
	DefaultProvider = "gemini"

	// DefaultGeminiBaseURL is the Gemini REST API root.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeoutSeconds bounds a single model request.
	DefaultTimeoutSeconds = 300

	// DefaultRetryAttempts is the per-model attempt budget for transient failures.
	DefaultRetryAttempts = 3

	// DefaultLanguage is the transcription and metadata language.
	DefaultLanguage = "pt-BR"

	// DefaultMaxInlineMB is the largest audio payload sent inline.
	DefaultMaxInlineMB = 20

	// DefaultSEOStyle is used by the seo command.
	DefaultSEOStyle = "professional"

	// DefaultPipelineStyle is used by convert-transcribe-seo.
	DefaultPipelineStyle = "clickbait"

	// DefaultMaxTranscriptChars is the transcript budget for SEO prompts.
	DefaultMaxTranscriptChars = 16000

	// DefaultMinSilenceMs is the shortest gap treated as silence.
	DefaultMinSilenceMs = 500

	// DefaultThresholdDB is the silence threshold in dBFS.
	DefaultThresholdDB = -40.0

	// DefaultKeepSilenceMs is the padding kept around each non-silent chunk.
	DefaultKeepSilenceMs = 100

	// DefaultSeekStepMs is the window stride.
	DefaultSeekStepMs = 1

	// DefaultMaxTitleLength caps organized folder names.
	DefaultMaxTitleLength = 50

	// DefaultPipPosition places the webcam overlay.
	DefaultPipPosition = "bottom-right"

	// DefaultPipScale is the webcam width as a fraction of the display width.
	DefaultPipScale = 0.25

	// DefaultPipMargin is the overlay distance from the frame edge in pixels.
	DefaultPipMargin = 20

	// DefaultCRF is the x264 quality for composed videos.
	DefaultCRF = 20

	// MaxCRF is the maximum valid x264 CRF value.
	MaxCRF = 51
)

// List defaults and accepted values.
var (
	DefaultPreferredModels = []string{"gemini-1.5-pro", "gemini-pro", "gemini-1.0-pro"}

	DefaultKeepFiles = []string{
		"channel-1-display-0.mp4",
		"channel-2-microphone-0.mp3",
		"channel-2-microphone-0-seo.json",
		"channel-3-webcam-0.mp4",
	}

	// SEOStyles lists the accepted metadata styles.
	SEOStyles = []string{"clickbait", "professional", "educational", "neutral"}

	// PipPositions lists the accepted overlay positions.
	PipPositions = []string{"top-left", "top-right", "bottom-left", "bottom-right", "center"}

	// Providers lists the supported language model backends.
	Providers = []string{"gemini", "openai"}
)

// Paths contains file system locations.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// LLM contains language model connection settings.
type LLM struct {
	Provider                 string   `toml:"provider"`
	APIKey                   string   `toml:"api_key"`
	BaseURL                  string   `toml:"base_url"`
	PreferredModels          []string `toml:"preferred_models"`
	TimeoutSeconds           int      `toml:"timeout_seconds"`
	RetryAttempts            int      `toml:"retry_attempts"`
	OpenAITranscriptionModel string   `toml:"openai_transcription_model"`
	OpenAIChatModel          string   `toml:"openai_chat_model"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Language    string `toml:"language"`
	MaxInlineMB int    `toml:"max_inline_mb"`
}

// SEO contains metadata generation settings.
type SEO struct {
	Style              string `toml:"style"`
	PipelineStyle      string `toml:"pipeline_style"`
	MaxTranscriptChars int    `toml:"max_transcript_chars"`
}

// Silence contains silence detection parameters.
type Silence struct {
	MinSilenceMs  int     `toml:"min_silence_ms"`
	ThresholdDB   float64 `toml:"threshold_db"`
	KeepSilenceMs int     `toml:"keep_silence_ms"`
	SeekStepMs    int     `toml:"seek_step_ms"`
}

// Organize contains recording organization settings.
type Organize struct {
	KeepFiles      []string `toml:"keep_files"`
	MaxTitleLength int      `toml:"max_title_length"`
}

// Process contains video composition settings.
type Process struct {
	PipWebcam   bool    `toml:"pip_webcam"`
	PipPosition string  `toml:"pip_position"`
	PipScale    float64 `toml:"pip_scale"`
	PipMargin   int     `toml:"pip_margin"`
	CRF         int     `toml:"crf"`
}

// History contains job history settings.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config holds all configuration for tubeprep.
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Transcription Transcription `toml:"transcription"`
	SEO           SEO           `toml:"seo"`
	Silence       Silence       `toml:"silence"`
	Organize      Organize      `toml:"organize"`
	Process       Process       `toml:"process"`
	History       History       `toml:"history"`
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    DefaultLogDir,
			HistoryDB: DefaultHistoryDB,
		},
		LLM: LLM{
			Provider:                 DefaultProvider,
			BaseURL:                  DefaultGeminiBaseURL,
			PreferredModels:          append([]string(nil), DefaultPreferredModels...),
			TimeoutSeconds:           DefaultTimeoutSeconds,
			RetryAttempts:            DefaultRetryAttempts,
			OpenAITranscriptionModel: "whisper-1",
			OpenAIChatModel:          "gpt-4o-mini",
		},
		Transcription: Transcription{
			Language:    DefaultLanguage,
			MaxInlineMB: DefaultMaxInlineMB,
		},
		SEO: SEO{
			Style:              DefaultSEOStyle,
			PipelineStyle:      DefaultPipelineStyle,
			MaxTranscriptChars: DefaultMaxTranscriptChars,
		},
		Silence: Silence{
			MinSilenceMs:  DefaultMinSilenceMs,
			ThresholdDB:   DefaultThresholdDB,
			KeepSilenceMs: DefaultKeepSilenceMs,
			SeekStepMs:    DefaultSeekStepMs,
		},
		Organize: Organize{
			KeepFiles:      append([]string(nil), DefaultKeepFiles...),
			MaxTitleLength: DefaultMaxTitleLength,
		},
		Process: Process{
			PipWebcam:   true,
			PipPosition: DefaultPipPosition,
			PipScale:    DefaultPipScale,
			PipMargin:   DefaultPipMargin,
			CRF:         DefaultCRF,
		},
		History: History{Enabled: true},
	}
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tubeprep/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields defaults. The returned config has all paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv(resolvedPath)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env from the working directory and from beside the
// config file. Variables already present in the environment win.
func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		_ = godotenv.Load(candidate)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tubeprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and the history database parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.History.Enabled && c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// APIKeyEnv returns the environment variable holding the key for a provider.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// DebugEnabled reports whether DEBUG is set to a truthy value.
func DebugEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEBUG"))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
