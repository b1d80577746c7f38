package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.LLM.Provider) {
		return fmt.Errorf("%w: '%s', valid options: %s", ErrInvalidProvider, c.LLM.Provider, strings.Join(Providers, ", "))
	}
	if err := ValidateStyle(c.SEO.Style); err != nil {
		return fmt.Errorf("seo.style: %w", err)
	}
	if err := ValidateStyle(c.SEO.PipelineStyle); err != nil {
		return fmt.Errorf("seo.pipeline_style: %w", err)
	}
	if c.SEO.MaxTranscriptChars <= 0 {
		return fmt.Errorf("%w: seo.max_transcript_chars got %d", ErrInvalidLimit, c.SEO.MaxTranscriptChars)
	}
	if c.Transcription.MaxInlineMB <= 0 {
		return fmt.Errorf("%w: transcription.max_inline_mb got %d", ErrInvalidLimit, c.Transcription.MaxInlineMB)
	}
	if err := c.Silence.Validate(); err != nil {
		return err
	}
	if c.Organize.MaxTitleLength <= 0 {
		return fmt.Errorf("%w: organize.max_title_length got %d", ErrInvalidLimit, c.Organize.MaxTitleLength)
	}
	if !slices.Contains(PipPositions, c.Process.PipPosition) {
		return fmt.Errorf("%w: '%s', valid options: %s", ErrInvalidPosition, c.Process.PipPosition, strings.Join(PipPositions, ", "))
	}
	if c.Process.PipScale <= 0 || c.Process.PipScale > 1 {
		return fmt.Errorf("%w: must be in (0, 1], got %g", ErrInvalidScale, c.Process.PipScale)
	}
	if c.Process.CRF < 0 || c.Process.CRF > MaxCRF {
		return fmt.Errorf("%w: must be 0-%d, got %d", ErrInvalidCRF, MaxCRF, c.Process.CRF)
	}
	return nil
}

// Validate checks silence detection parameters.
func (s Silence) Validate() error {
	if s.ThresholdDB > 0 {
		return fmt.Errorf("%w: must be <= 0 dBFS, got %g", ErrInvalidThreshold, s.ThresholdDB)
	}
	if s.MinSilenceMs <= 0 {
		return fmt.Errorf("%w: min_silence_ms must be positive, got %d", ErrInvalidSilence, s.MinSilenceMs)
	}
	if s.SeekStepMs <= 0 {
		return fmt.Errorf("%w: seek_step_ms must be positive, got %d", ErrInvalidSilence, s.SeekStepMs)
	}
	if s.KeepSilenceMs < 0 {
		return fmt.Errorf("%w: keep_silence_ms must not be negative, got %d", ErrInvalidSilence, s.KeepSilenceMs)
	}
	return nil
}

// ValidateStyle reports whether style names a known SEO style.
func ValidateStyle(style string) error {
	if slices.Contains(SEOStyles, strings.ToLower(strings.TrimSpace(style))) {
		return nil
	}
	return fmt.Errorf("%w: '%s', valid options: %s", ErrInvalidStyle, style, strings.Join(SEOStyles, ", "))
}
