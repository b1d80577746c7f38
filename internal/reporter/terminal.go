package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/five82/tubeprep/internal/util"
)

// descriptionPreview bounds how much of a generated description is printed.
const descriptionPreview = 200

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu          sync.Mutex
	out         io.Writer
	errOut      io.Writer
	interactive bool
	verbose     bool
	progress    *progressbar.ProgressBar
	maxPercent  float32
	lastStage   string
	cyan        *color.Color
	green       *color.Color
	yellow      *color.Color
	red         *color.Color
	magenta     *color.Color
	bold        *color.Color
	faint       *color.Color
}

// NewTerminalReporter creates a terminal reporter on stdout and stderr.
// Progress bars are only drawn when stderr is a terminal.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	fd := os.Stderr.Fd()
	r := NewTerminalReporterWithWriters(os.Stdout, os.Stderr)
	r.interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	r.verbose = verbose
	return r
}

// NewTerminalReporterWithWriters creates a non-interactive terminal reporter
// with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

// SetVerbose toggles Verbose output.
func (r *TerminalReporter) SetVerbose(verbose bool) {
	r.mu.Lock()
	r.verbose = verbose
	r.mu.Unlock()
}

func (r *TerminalReporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *TerminalReporter) section(title string) {
	r.printf("\n")
	_, _ = r.cyan.Fprintln(r.out, strings.ToUpper(title))
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	r.printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.section(summary.Operation)
	width := 8
	for _, kv := range summary.Details {
		width = max(width, len(kv[0])+1)
	}
	r.printLabel(width, "Input:", summary.InputFile)
	if summary.OutputFile != "" {
		r.printLabel(width, "Output:", summary.OutputFile)
	}
	for _, kv := range summary.Details {
		r.printLabel(width, kv[0]+":", kv[1])
	}
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()
	if newStage {
		r.section(update.Stage)
	}
	r.printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) ProgressStarted(stage string) {
	r.finishProgress()
	if !r.interactive {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	label := cases.Title(language.English).String(stage)
	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      label + " [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) Progress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	if progress.Speed > 0 {
		r.progress.Describe(fmt.Sprintf("speed %.1fx, eta %s",
			progress.Speed, util.FormatDuration(progress.ETA.Seconds())))
	}
}

func (r *TerminalReporter) ProgressFinished() {
	r.finishProgress()
}

func (r *TerminalReporter) MetadataComplete(summary MetadataSummary) {
	r.section("Metadata")
	for _, line := range strings.Split(summary.Text, "\n") {
		if line == "" {
			r.printf("\n")
			continue
		}
		r.printf("  %s\n", line)
	}
	if summary.OutputPath != "" {
		r.printf("\n  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
	}
}

func (r *TerminalReporter) SilenceComplete(summary SilenceSummary) {
	r.finishProgress()
	r.section("Results")
	const w = 10
	r.printLabel(w, "Output:", r.bold.Sprint(summary.OutputFile))
	r.printLabel(w, "Length:", fmt.Sprintf("%s -> %s",
		util.FormatSeconds(summary.OriginalSeconds), util.FormatSeconds(summary.NewSeconds)))
	r.printLabel(w, "Removed:", r.bold.Sprintf("%.1f%%", summary.ReductionPercent))
	r.printLabel(w, "Chunks:", fmt.Sprintf("%d", summary.Chunks))
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) SilenceRanges(summary SilenceRangesSummary) {
	r.finishProgress()
	r.section("Silence")
	if len(summary.Ranges) == 0 {
		r.printf("  %s\n", r.faint.Sprint("no silence found"))
		return
	}
	var total float64
	rows := make([][]string, 0, len(summary.Ranges))
	for i, s := range summary.Ranges {
		total += s.Duration
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			util.FormatSeconds(s.Start),
			util.FormatSeconds(s.End),
			util.FormatSeconds(s.Duration),
		})
	}
	_, _ = fmt.Fprintln(r.out, RenderTable(TableData{
		Headers:      []string{"#", "Start", "End", "Duration"},
		Rows:         rows,
		RightAligned: []int{0, 1, 2, 3},
	}))
	r.printf("  %d range(s), %s of %s silent\n",
		len(summary.Ranges), util.FormatSeconds(total), util.FormatSeconds(summary.LengthSeconds))
}

func (r *TerminalReporter) TranscriptionComplete(summary TranscriptionSummary) {
	r.finishProgress()
	r.section("Transcription")
	const w = 11
	r.printLabel(w, "Provider:", summary.Provider)
	r.printLabel(w, "Characters:", fmt.Sprintf("%d", summary.Characters))
	if summary.Preview != "" {
		r.printLabel(w, "Preview:", r.faint.Sprint(summary.Preview))
	}
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) SEOComplete(summary SEOSummary) {
	r.section("SEO")
	const w = 12
	if summary.Style != "" {
		r.printLabel(w, "Style:", summary.Style)
	}
	r.printLabel(w, "Title:", r.bold.Sprint(summary.Title))
	r.printLabel(w, "Tags:", strings.Join(summary.Tags, ", "))
	r.printLabel(w, "Description:", util.Preview(summary.Description, descriptionPreview))
	if summary.OutputPath != "" {
		r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
	}
}

func (r *TerminalReporter) AnalysisComplete(summary AnalysisSummary) {
	r.section("Analysis")
	const w = 10
	r.printLabel(w, "Topics:", strings.Join(summary.Topics, ", "))
	r.printLabel(w, "Keywords:", strings.Join(summary.Keywords, ", "))
	r.printLabel(w, "Sentiment:", summary.Sentiment)
	for _, s := range summary.Suggestions {
		r.printf("  - %s\n", s)
	}
	for _, m := range summary.Moments {
		r.printf("  %s %s\n", r.magenta.Sprint(m.Time), m.Description)
	}
}

func (r *TerminalReporter) OrganizeComplete(summary OrganizeSummary) {
	r.section("Organize")
	r.printLabel(7, "Title:", summary.Title)
	for _, name := range summary.Copied {
		r.printf("  %s %s\n", r.green.Sprint("✓"), name)
	}
	for _, name := range summary.Missing {
		r.printf("  %s %s\n", r.yellow.Sprint("!"), r.faint.Sprintf("%s (not found)", name))
	}
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.Destination))
}

func (r *TerminalReporter) ComposeComplete(summary ComposeSummary) {
	r.finishProgress()
	r.section("Results")
	webcam := "no"
	if summary.Webcam {
		webcam = "picture-in-picture"
	}
	r.printLabel(8, "Output:", r.bold.Sprint(summary.OutputFile))
	r.printLabel(8, "Size:", util.FormatBytes(summary.Size))
	r.printLabel(8, "Webcam:", webcam)
	r.printLabel(8, "Time:", util.FormatDuration(summary.TotalTime.Seconds()))
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Table(data TableData) {
	if data.Title != "" {
		r.section(data.Title)
		data.Title = ""
	}
	_, _ = fmt.Fprintln(r.out, RenderTable(data))
}

func (r *TerminalReporter) Warning(message string) {
	r.printf("\n")
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.printf("\n%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("Batch")
	r.printf("  Processing %d files with %d worker(s)\n", info.TotalFiles, max(info.Jobs, 1))
	for i, name := range info.FileList {
		r.printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	r.printf("\nFile %s of %d: %s\n", r.bold.Sprint(context.CurrentFile), context.TotalFiles, context.Filename)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.section("Batch summary")
	r.printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	r.printf("  Time: %s\n", util.FormatDuration(summary.TotalDuration.Seconds()))
	for _, result := range summary.FileResults {
		if result.Success {
			r.printf("  %s %s\n", r.green.Sprint("✓"), result.Filename)
		} else {
			r.printf("  %s %s (%s)\n", r.red.Sprint("✗"), result.Filename, result.Detail)
		}
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	r.printf("  %s\n", r.faint.Sprint(message))
}
