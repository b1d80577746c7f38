package processing

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/fileutil"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/seo"
	"github.com/five82/tubeprep/internal/transcribe"
	"github.com/five82/tubeprep/internal/util"
)

// transcriptPreview bounds the transcript excerpt shown after transcription.
const transcriptPreview = 120

// SEOResult is the outcome of GenerateSEO.
type SEOResult struct {
	Metadata     *seo.Metadata
	Insights     *seo.Insights
	Path         string
	InsightsPath string
}

// AnalysisPath is where transcript insights are saved:
// "<dir>/<stem>.analysis.json" beside the transcript.
func AnalysisPath(transcriptPath string) string {
	return util.TrimExt(transcriptPath) + ".analysis.json"
}

func (o *Orchestrator) transcriber() (*transcribe.Transcriber, error) {
	provider, err := o.Provider()
	if err != nil {
		return nil, err
	}
	t := transcribe.New(provider, o.Config.Transcription)
	t.FFmpeg = o.FFmpeg
	t.TempDir = o.TempDir
	return t, nil
}

func (o *Orchestrator) generator() (*seo.Generator, error) {
	provider, err := o.Provider()
	if err != nil {
		return nil, err
	}
	return seo.NewGenerator(provider, o.Config), nil
}

// Transcribe writes the transcript of input to output, defaulting to
// "<stem>.transcription.txt". It returns the path and the text.
func (o *Orchestrator) Transcribe(ctx context.Context, input, output string) (string, string, error) {
	if output == "" {
		output = util.TranscriptionPath(input)
	}
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "Transcribe",
		InputFile:  input,
		OutputFile: output,
		Details: [][2]string{
			{"Provider", o.Config.LLM.Provider},
			{"Language", transcribe.LanguageName(o.Config.Transcription.Language)},
		},
	})

	var text string
	err := o.track(ctx, KindTranscribe, input, func() (string, error) {
		var err error
		text, err = o.transcribeTo(ctx, input, output)
		if err != nil {
			return "", err
		}
		return output, nil
	})
	if err != nil {
		return "", "", err
	}
	o.reportTranscript(input, output, text)
	return output, text, nil
}

func (o *Orchestrator) transcribeTo(ctx context.Context, input, output string) (string, error) {
	t, err := o.transcriber()
	if err != nil {
		return "", err
	}
	o.Reporter.StageProgress(reporter.StageProgress{
		Stage:   "transcribe",
		Message: "Sending " + filepath.Base(input) + " to " + o.Config.LLM.Provider,
	})
	text, err := t.Transcribe(ctx, input)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(output, []byte(text)); err != nil {
		return "", errors.NewIOError("save transcript", err)
	}
	return text, nil
}

func (o *Orchestrator) reportTranscript(input, output, text string) {
	o.Reporter.TranscriptionComplete(reporter.TranscriptionSummary{
		InputFile:  filepath.Base(input),
		Provider:   o.Config.LLM.Provider,
		Characters: len([]rune(text)),
		Preview:    util.Preview(strings.Join(strings.Fields(text), " "), transcriptPreview),
		OutputPath: output,
	})
}

// GenerateSEO reads a transcript and writes title, description and tags to
// output, defaulting to "<stem>.seo.json". With analyze it also extracts
// transcript insights into AnalysisPath.
func (o *Orchestrator) GenerateSEO(ctx context.Context, transcriptPath, style, output string, analyze bool) (*SEOResult, error) {
	if style == "" {
		style = o.Config.SEO.Style
	}
	if !seo.ValidStyle(style) {
		return nil, errors.NewConfigError("unknown SEO style " + style + " (valid: " + strings.Join(seo.Styles(), ", ") + ")")
	}
	if output == "" {
		output = util.SEOPath(transcriptPath)
	}
	o.Reporter.Initialization(reporter.InitializationSummary{
		Operation:  "SEO",
		InputFile:  transcriptPath,
		OutputFile: output,
		Details:    [][2]string{{"Style", style}, {"Provider", o.Config.LLM.Provider}},
	})

	result := &SEOResult{Path: output}
	err := o.track(ctx, KindSEO, transcriptPath, func() (string, error) {
		data, err := os.ReadFile(transcriptPath)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NewPathError("transcript not found: " + transcriptPath)
			}
			return "", errors.NewIOError("read transcript", err)
		}
		transcript := string(data)

		meta, err := o.seoTo(ctx, transcript, style, output)
		if err != nil {
			return "", err
		}
		result.Metadata = meta
		if !analyze {
			return output, nil
		}

		gen, err := o.generator()
		if err != nil {
			return output, err
		}
		o.Reporter.StageProgress(reporter.StageProgress{Stage: "analyze", Message: "Extracting topics and key moments"})
		insights, err := gen.Analyze(ctx, transcript)
		if err != nil {
			return output, err
		}
		result.Insights = insights
		result.InsightsPath = AnalysisPath(transcriptPath)
		if err := fileutil.WriteJSON(result.InsightsPath, insights); err != nil {
			return output, errors.NewIOError("save analysis", err)
		}
		return output, nil
	})
	if result.Metadata != nil {
		o.reportSEO(style, result.Metadata, output)
	}
	if err != nil {
		return nil, err
	}
	if result.Insights != nil {
		o.reportInsights(result.Insights)
		logging.Info("analysis saved", "path", result.InsightsPath)
	}
	return result, nil
}

func (o *Orchestrator) seoTo(ctx context.Context, transcript, style, output string) (*seo.Metadata, error) {
	gen, err := o.generator()
	if err != nil {
		return nil, err
	}
	o.Reporter.StageProgress(reporter.StageProgress{Stage: "seo", Message: "Generating " + style + " metadata"})
	meta, err := gen.Generate(ctx, transcript, style)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteJSON(output, meta); err != nil {
		return nil, errors.NewIOError("save seo metadata", err)
	}
	return meta, nil
}

func (o *Orchestrator) reportSEO(style string, meta *seo.Metadata, output string) {
	o.Reporter.SEOComplete(reporter.SEOSummary{
		Style:       style,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        meta.Tags,
		OutputPath:  output,
	})
}

func (o *Orchestrator) reportInsights(in *seo.Insights) {
	moments := make([]reporter.Moment, len(in.ImportantMoments))
	for i, m := range in.ImportantMoments {
		moments[i] = reporter.Moment{Time: m.Time, Description: m.Description}
	}
	o.Reporter.AnalysisComplete(reporter.AnalysisSummary{
		Topics:      in.Topics,
		Keywords:    in.Keywords,
		Sentiment:   in.Sentiment,
		Suggestions: in.Suggestions,
		Moments:     moments,
	})
}
