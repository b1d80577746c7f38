// Package transcribe turns audio files into text with a language model.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/llm"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

// mimeTypes maps inline-uploadable extensions to their MIME type.
var mimeTypes = map[string]string{
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// Runner runs ffmpeg. *ffmpeg.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, args []string, duration float64, callback ffmpeg.ProgressCallback) error
}

// Transcriber sends audio to a provider.
type Transcriber struct {
	Provider llm.Provider
	FFmpeg   Runner
	// Language is the BCP 47 tag of the spoken language.
	Language string
	// MaxInlineMB bounds the uploaded payload.
	MaxInlineMB int
	// TempDir holds converted audio; empty uses the system temp dir.
	TempDir string
}

// New builds a Transcriber from the transcription settings.
func New(provider llm.Provider, cfg config.Transcription) *Transcriber {
	return &Transcriber{
		Provider:    provider,
		FFmpeg:      ffmpeg.DefaultRunner,
		Language:    cfg.Language,
		MaxInlineMB: cfg.MaxInlineMB,
	}
}

// needsConversion reports whether the file must be re-encoded to MP3 before
// upload.
func needsConversion(path string) bool {
	_, ok := mimeTypes[util.Ext(path)]
	return !ok
}

// MIMEType returns the upload MIME type for path, or "" when the file must be
// converted first.
func MIMEType(path string) string {
	return mimeTypes[util.Ext(path)]
}

// Transcribe returns the trimmed transcription of the audio at path.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if t.Provider == nil {
		return "", errors.NewConfigError("no language model provider configured")
	}
	if !util.FileExists(path) {
		return "", errors.NewPathError("audio file not found: " + path)
	}
	if !util.IsMediaPath(path) {
		return "", errors.NewUnsupportedFormatError(util.Ext(path))
	}

	upload := path
	if needsConversion(path) {
		dir, err := util.CreateTempDir(t.TempDir, "tubeprep_transcribe")
		if err != nil {
			return "", errors.NewIOError("create temp dir", err)
		}
		defer func() { _ = dir.Cleanup() }()

		upload = dir.Join(util.GetFileStem(path) + ".mp3")
		args, err := ffmpeg.ToMP3(path, upload)
		if err != nil {
			return "", err
		}
		logging.Info("converting audio for upload", "input", path, "output", upload)
		if err := t.ffmpeg().Run(ctx, args, 0, nil); err != nil {
			return "", err
		}
	}

	size, err := util.GetFileSize(upload)
	if err != nil {
		return "", errors.NewIOError("stat audio", err)
	}
	if limit := t.limitBytes(); size > limit {
		return "", errors.NewOperationFailedError(
			fmt.Sprintf("audio payload is %s, above the %d MB inline limit; run remove-silence first to shrink it",
				util.FormatBytes(size), t.maxInlineMB()), nil)
	}

	data, err := os.ReadFile(upload)
	if err != nil {
		return "", errors.NewIOError("read audio", err)
	}

	lang := t.language()
	logging.Info("transcribing",
		"input", path,
		"provider", t.Provider.Name(),
		"bytes", len(data),
		"language", lang)

	text, err := t.Provider.Transcribe(ctx, llm.AudioInput{
		Data:     data,
		MIMEType: MIMEType(upload),
		FileName: util.GetFileStem(upload) + util.Ext(upload),
		Prompt:   Prompt(lang),
		Language: lang,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.NewLLMError("the model returned an empty transcription", nil)
	}
	return text, nil
}

func (t *Transcriber) ffmpeg() Runner {
	if t.FFmpeg == nil {
		return ffmpeg.DefaultRunner
	}
	return t.FFmpeg
}

func (t *Transcriber) language() string {
	if strings.TrimSpace(t.Language) == "" {
		return config.DefaultLanguage
	}
	return strings.TrimSpace(t.Language)
}

func (t *Transcriber) maxInlineMB() int {
	if t.MaxInlineMB <= 0 {
		return config.DefaultMaxInlineMB
	}
	return t.MaxInlineMB
}

func (t *Transcriber) limitBytes() uint64 {
	return uint64(t.maxInlineMB()) * util.MiB
}

// Prompt builds the transcription instructions for a language tag.
func Prompt(tag string) string {
	return fmt.Sprintf("Please transcribe this audio in %s. "+
		"Format the text cleanly and legibly, with proper paragraphs. "+
		"Include only the transcription, without additional comments.", LanguageName(tag))
}

// LanguageName renders a tag for prompts, e.g. "Brazilian Portuguese (pt-BR)".
// Unparseable tags are returned unchanged.
func LanguageName(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	name := display.English.Tags().Name(parsed)
	if name == "" {
		return parsed.String()
	}
	return fmt.Sprintf("%s (%s)", name, parsed.String())
}
