package seo

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/llm"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

// AnalysisWindow is the transcript prefix sent for content analysis.
const AnalysisWindow = 15000

// Moment is a notable point in the video.
type Moment struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Insights summarise a transcript.
type Insights struct {
	Topics           []string `json:"topics"`
	Keywords         []string `json:"keywords"`
	Sentiment        string   `json:"sentiment"`
	Suggestions      []string `json:"suggestions"`
	ImportantMoments []Moment `json:"important_moments"`
}

// Analyze extracts topics, keywords, sentiment, suggestions and key moments.
func (g *Generator) Analyze(ctx context.Context, transcript string) (*Insights, error) {
	if g.Provider == nil {
		return nil, errors.NewConfigError("no language model provider configured")
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.NewOperationFailedError("transcript is empty", nil)
	}

	prompt := AnalysisPrompt(util.Truncate(transcript, AnalysisWindow), g.language())
	logging.Info("analyzing transcript", "provider", g.Provider.Name())

	content, err := g.Provider.Generate(ctx, prompt, llm.AnalysisConfig())
	if err != nil {
		return nil, err
	}
	var insights Insights
	if err := llm.DecodeJSON(content, &insights); err != nil {
		return nil, errors.NewJSONParseError("parse analysis response", err)
	}
	insights.Sentiment = strings.ToLower(strings.TrimSpace(insights.Sentiment))
	return &insights, nil
}

// AnalysisPrompt builds the content analysis request.
func AnalysisPrompt(transcript, language string) string {
	return fmt.Sprintf(`Analyze the following transcript and extract these insights, written in %s:

1. Main topics covered
2. Important keywords
3. Overall sentiment (positive, negative, neutral)
4. Suggestions to improve the content
5. Approximate timestamps for the most important moments

RETURN ONLY A JSON OBJECT with this structure:
{
  "topics": ["topic 1", "topic 2"],
  "keywords": ["keyword1", "keyword2"],
  "sentiment": "positive|negative|neutral",
  "suggestions": ["suggestion 1", "suggestion 2"],
  "important_moments": [
    {"time": "MM:SS", "description": "What happens at this moment"}
  ]
}

TRANSCRIPT:
%s`, language, transcript)
}
