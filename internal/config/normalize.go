package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeText()
	c.normalizeOrganize()
	c.Process.PipPosition = strings.ToLower(strings.TrimSpace(c.Process.PipPosition))
	if c.Process.PipPosition == "" {
		c.Process.PipPosition = DefaultPipPosition
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = DefaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = DefaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv(APIKeyEnv(c.LLM.Provider)); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" && c.LLM.Provider == "gemini" {
		c.LLM.BaseURL = DefaultGeminiBaseURL
	}

	if value, ok := os.LookupEnv("PREFERRED_MODELS"); ok && strings.TrimSpace(value) != "" {
		c.LLM.PreferredModels = strings.Split(value, ",")
	}
	c.LLM.PreferredModels = cleanList(c.LLM.PreferredModels)
	if len(c.LLM.PreferredModels) == 0 && c.LLM.Provider == "gemini" {
		c.LLM.PreferredModels = append([]string(nil), DefaultPreferredModels...)
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = DefaultRetryAttempts
	}
	c.LLM.OpenAITranscriptionModel = strings.TrimSpace(c.LLM.OpenAITranscriptionModel)
	c.LLM.OpenAIChatModel = strings.TrimSpace(c.LLM.OpenAIChatModel)
}

func (c *Config) normalizeText() {
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.Language == "" {
		c.Transcription.Language = DefaultLanguage
	}
	c.SEO.Style = strings.ToLower(strings.TrimSpace(c.SEO.Style))
	if c.SEO.Style == "" {
		c.SEO.Style = DefaultSEOStyle
	}
	c.SEO.PipelineStyle = strings.ToLower(strings.TrimSpace(c.SEO.PipelineStyle))
	if c.SEO.PipelineStyle == "" {
		c.SEO.PipelineStyle = DefaultPipelineStyle
	}
}

func (c *Config) normalizeOrganize() {
	c.Organize.KeepFiles = cleanList(c.Organize.KeepFiles)
	if len(c.Organize.KeepFiles) == 0 {
		c.Organize.KeepFiles = append([]string(nil), DefaultKeepFiles...)
	}
}

// cleanList trims entries, drops blanks and removes duplicates while keeping order.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
