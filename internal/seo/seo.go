// Package seo generates YouTube titles, descriptions and tags from transcripts.
package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/llm"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

const (
	// MaxTitleRunes is YouTube's title limit.
	MaxTitleRunes = 100
	// MaxTags caps the tag list.
	MaxTags = 15
	// TruncationMarker is appended to shortened transcripts.
	TruncationMarker = "... (transcript truncated)"
)

var styleDescriptions = map[string]string{
	"clickbait":    "catchy and popular, with attention-grabbing titles that drive lots of clicks",
	"professional": "professional and formal",
	"educational":  "educational and detailed, focused on delivering informative value",
	"neutral":      "neutral and objective",
}

// ValidStyle reports whether style is one of config.SEOStyles.
func ValidStyle(style string) bool {
	_, ok := styleDescriptions[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

// StyleDescription returns the prompt wording for style, falling back to
// professional for unknown styles.
func StyleDescription(style string) string {
	if d, ok := styleDescriptions[strings.ToLower(strings.TrimSpace(style))]; ok {
		return d
	}
	return styleDescriptions[config.DefaultSEOStyle]
}

// Metadata is the generated video metadata.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// tagList accepts either a JSON array or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be a list or a string: %w", err)
	}
	*t = strings.Split(joined, ",")
	return nil
}

type rawMetadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        tagList `json:"tags"`
}

// Generator asks a provider for metadata.
type Generator struct {
	Provider           llm.Provider
	MaxTranscriptChars int
	Language           string
}

// NewGenerator builds a Generator from the loaded configuration.
func NewGenerator(provider llm.Provider, cfg *config.Config) *Generator {
	return &Generator{
		Provider:           provider,
		MaxTranscriptChars: cfg.SEO.MaxTranscriptChars,
		Language:           cfg.Transcription.Language,
	}
}

// Generate returns normalized metadata for transcript in the given style.
func (g *Generator) Generate(ctx context.Context, transcript, style string) (*Metadata, error) {
	if g.Provider == nil {
		return nil, errors.NewConfigError("no language model provider configured")
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.NewOperationFailedError("transcript is empty", nil)
	}
	limit := g.MaxTranscriptChars
	if limit <= 0 {
		limit = config.DefaultMaxTranscriptChars
	}

	prompt := Prompt(TruncateTranscript(transcript, limit), style, g.language())
	logging.Info("generating seo", "provider", g.Provider.Name(), "style", style, "transcript_chars", len([]rune(transcript)))

	content, err := g.Provider.Generate(ctx, prompt, llm.SEOConfig())
	if err != nil {
		return nil, err
	}
	var raw rawMetadata
	if err := llm.DecodeJSON(content, &raw); err != nil {
		return nil, errors.NewJSONParseError("parse seo response", err)
	}
	meta := Normalize(Metadata{Title: raw.Title, Description: raw.Description, Tags: raw.Tags})
	if meta.Title == "" {
		return nil, errors.NewLLMError("the model returned metadata without a title", nil)
	}
	return &meta, nil
}

func (g *Generator) language() string {
	if strings.TrimSpace(g.Language) == "" {
		return config.DefaultLanguage
	}
	return strings.TrimSpace(g.Language)
}

// TruncateTranscript cuts text to limit runes and marks the cut.
func TruncateTranscript(text string, limit int) string {
	cut := util.Truncate(text, limit)
	if cut == text {
		return text
	}
	return cut + TruncationMarker
}

// Normalize trims fields, caps the title and de-duplicates tags
// case-insensitively while keeping the first spelling.
func Normalize(m Metadata) Metadata {
	out := Metadata{
		Title:       util.Truncate(strings.TrimSpace(m.Title), MaxTitleRunes),
		Description: strings.TrimSpace(m.Description),
		Tags:        make([]string, 0, len(m.Tags)),
	}
	out.Title = strings.TrimSpace(out.Title)

	seen := make(map[string]bool, len(m.Tags))
	for _, tag := range m.Tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Tags = append(out.Tags, tag)
		if len(out.Tags) == MaxTags {
			break
		}
	}
	return out
}

// Prompt builds the metadata request.
func Prompt(transcript, style, language string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on this transcript, write a YouTube title, description and tags in %s. ", language)
	fmt.Fprintf(&sb, "The style must be %s.\n\n", StyleDescription(style))
	sb.WriteString("Transcript:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\nRespond ONLY with a valid JSON object in the following format, with no extra explanation:\n")
	sb.WriteString("{\n")
	fmt.Fprintf(&sb, "  \"title\": \"Video title, at most %d characters\",\n", MaxTitleRunes)
	sb.WriteString("  \"description\": \"Engaging description with 1-2 paragraphs and a call to action\",\n")
	fmt.Fprintf(&sb, "  \"tags\": [\"tag1\", \"tag2\"] (up to %d relevant tags)\n", MaxTags)
	sb.WriteString("}\n")
	return sb.String()
}

// Styles returns the accepted style names in display order.
func Styles() []string {
	return slices.Clone(config.SEOStyles)
}
