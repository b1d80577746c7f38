// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// InitializationSummary describes the input of an operation before it runs.
type InitializationSummary struct {
	Operation  string
	InputFile  string
	OutputFile string
	Details    [][2]string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}

// ProgressSnapshot contains progress of a long-running step.
type ProgressSnapshot struct {
	Stage   string
	Percent float32
	Speed   float32
	ETA     time.Duration
}

// MetadataSummary contains the metadata of a recording.
type MetadataSummary struct {
	Text       string
	Metadata   any
	Warnings   []string
	OutputPath string
}

// SilenceSummary contains the outcome of a silence removal.
type SilenceSummary struct {
	InputFile        string
	OutputFile       string
	OriginalSeconds  float64
	NewSeconds       float64
	ReductionPercent float64
	Chunks           int
	OutputPath       string
}

// SilenceRange is one detected silent stretch, in seconds.
type SilenceRange struct {
	Start    float64
	End      float64
	Duration float64
}

// SilenceRangesSummary lists the silences found in a file.
type SilenceRangesSummary struct {
	InputFile     string
	LengthSeconds float64
	Ranges        []SilenceRange
}

// TranscriptionSummary contains a finished transcription.
type TranscriptionSummary struct {
	InputFile  string
	Provider   string
	Characters int
	Preview    string
	OutputPath string
}

// SEOSummary contains generated video metadata.
type SEOSummary struct {
	Style       string
	Title       string
	Description string
	Tags        []string
	OutputPath  string
}

// Moment is a notable point in a transcript.
type Moment struct {
	Time        string
	Description string
}

// AnalysisSummary contains transcript insights.
type AnalysisSummary struct {
	Topics      []string
	Keywords    []string
	Sentiment   string
	Suggestions []string
	Moments     []Moment
}

// OrganizeSummary contains the result of organizing a recording.
type OrganizeSummary struct {
	Title       string
	Destination string
	Copied      []string
	Missing     []string
}

// ComposeSummary contains the result of composing a recording.
type ComposeSummary struct {
	OutputFile string
	Size       uint64
	Webcam     bool
	TotalTime  time.Duration
	OutputPath string
}

// TableData is a titled table of rows.
type TableData struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAligned lists zero-based column indexes to right-align.
	RightAligned []int
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	Jobs       int
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	Filename    string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount int
	TotalFiles      int
	TotalDuration   time.Duration
	FileResults     []FileResult
}

// FileResult contains a per-file pipeline result.
type FileResult struct {
	Filename string
	Success  bool
	Detail   string
}
