package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONReporter outputs one JSON event per line. Every event carries the
// run_id of the reporter so interleaved logs can be told apart.
type JSONReporter struct {
	writer             io.Writer
	runID              string
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
	now                func() time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		runID:              uuid.NewString(),
		lastProgressBucket: -1,
		now:                time.Now,
	}
}

// RunID returns the identifier stamped on every event.
func (r *JSONReporter) RunID() string {
	return r.runID
}

func (r *JSONReporter) write(eventType string, fields map[string]any) {
	fields["type"] = eventType
	fields["run_id"] = r.runID
	fields["timestamp"] = r.now().Unix()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	details := make(map[string]string, len(summary.Details))
	for _, kv := range summary.Details {
		details[kv[0]] = kv[1]
	}
	r.write("initialization", map[string]any{
		"operation":   summary.Operation,
		"input_file":  summary.InputFile,
		"output_file": summary.OutputFile,
		"details":     details,
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]any{
		"stage":   update.Stage,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write("stage_progress", event)
}

func (r *JSONReporter) ProgressStarted(stage string) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write("progress_started", map[string]any{"stage": stage})
}

// Progress emits at most one event per percent, plus a heartbeat every five
// seconds and anything at or above 99%.
func (r *JSONReporter) Progress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0
	if !shouldEmit {
		r.mu.Unlock()
		return
	}
	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write("progress", map[string]any{
		"stage":       progress.Stage,
		"percent":     progress.Percent,
		"speed":       progress.Speed,
		"eta_seconds": int64(progress.ETA.Seconds()),
	})
}

func (r *JSONReporter) ProgressFinished() {}

func (r *JSONReporter) MetadataComplete(summary MetadataSummary) {
	r.write("metadata_complete", map[string]any{
		"metadata":    summary.Metadata,
		"warnings":    summary.Warnings,
		"output_path": summary.OutputPath,
	})
}

func (r *JSONReporter) SilenceComplete(summary SilenceSummary) {
	r.write("silence_complete", map[string]any{
		"input_file":        summary.InputFile,
		"output_file":       summary.OutputFile,
		"original_seconds":  summary.OriginalSeconds,
		"new_seconds":       summary.NewSeconds,
		"reduction_percent": summary.ReductionPercent,
		"chunks":            summary.Chunks,
		"output_path":       summary.OutputPath,
	})
}

func (r *JSONReporter) SilenceRanges(summary SilenceRangesSummary) {
	ranges := make([]map[string]float64, len(summary.Ranges))
	for i, s := range summary.Ranges {
		ranges[i] = map[string]float64{"start": s.Start, "end": s.End, "duration": s.Duration}
	}
	r.write("silence_ranges", map[string]any{
		"input_file":     summary.InputFile,
		"length_seconds": summary.LengthSeconds,
		"ranges":         ranges,
	})
}

func (r *JSONReporter) TranscriptionComplete(summary TranscriptionSummary) {
	r.write("transcription_complete", map[string]any{
		"input_file":  summary.InputFile,
		"provider":    summary.Provider,
		"characters":  summary.Characters,
		"output_path": summary.OutputPath,
	})
}

func (r *JSONReporter) SEOComplete(summary SEOSummary) {
	r.write("seo_complete", map[string]any{
		"style":       summary.Style,
		"title":       summary.Title,
		"description": summary.Description,
		"tags":        summary.Tags,
		"output_path": summary.OutputPath,
	})
}

func (r *JSONReporter) AnalysisComplete(summary AnalysisSummary) {
	moments := make([]map[string]string, len(summary.Moments))
	for i, m := range summary.Moments {
		moments[i] = map[string]string{"time": m.Time, "description": m.Description}
	}
	r.write("analysis_complete", map[string]any{
		"topics":      summary.Topics,
		"keywords":    summary.Keywords,
		"sentiment":   summary.Sentiment,
		"suggestions": summary.Suggestions,
		"moments":     moments,
	})
}

func (r *JSONReporter) OrganizeComplete(summary OrganizeSummary) {
	r.write("organize_complete", map[string]any{
		"title":       summary.Title,
		"destination": summary.Destination,
		"copied":      summary.Copied,
		"missing":     summary.Missing,
	})
}

func (r *JSONReporter) ComposeComplete(summary ComposeSummary) {
	r.write("compose_complete", map[string]any{
		"output_file":      summary.OutputFile,
		"size":             summary.Size,
		"webcam":           summary.Webcam,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
		"output_path":      summary.OutputPath,
	})
}

func (r *JSONReporter) Table(data TableData) {
	r.write("table", map[string]any{
		"title":   data.Title,
		"headers": data.Headers,
		"rows":    data.Rows,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write("warning", map[string]any{"message": message})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write("error", map[string]any{
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write("operation_complete", map[string]any{"message": message})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write("batch_started", map[string]any{
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"jobs":        info.Jobs,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write("file_progress", map[string]any{
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"filename":     context.Filename,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]any{"filename": fr.Filename, "success": fr.Success, "detail": fr.Detail}
	}
	r.write("batch_complete", map[string]any{
		"successful_count":       summary.SuccessfulCount,
		"total_files":            summary.TotalFiles,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"file_results":           results,
	})
}

func (r *JSONReporter) Verbose(string) {}
