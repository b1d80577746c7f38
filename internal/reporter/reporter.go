package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Initialization(summary InitializationSummary)
	StageProgress(update StageProgress)
	ProgressStarted(stage string)
	Progress(progress ProgressSnapshot)
	ProgressFinished()
	MetadataComplete(summary MetadataSummary)
	SilenceComplete(summary SilenceSummary)
	SilenceRanges(summary SilenceRangesSummary)
	TranscriptionComplete(summary TranscriptionSummary)
	SEOComplete(summary SEOSummary)
	AnalysisComplete(summary AnalysisSummary)
	OrganizeComplete(summary OrganizeSummary)
	ComposeComplete(summary ComposeSummary)
	Table(data TableData)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Initialization(InitializationSummary)       {}
func (NullReporter) StageProgress(StageProgress)                {}
func (NullReporter) ProgressStarted(string)                     {}
func (NullReporter) Progress(ProgressSnapshot)                  {}
func (NullReporter) ProgressFinished()                          {}
func (NullReporter) MetadataComplete(MetadataSummary)           {}
func (NullReporter) SilenceComplete(SilenceSummary)             {}
func (NullReporter) SilenceRanges(SilenceRangesSummary)         {}
func (NullReporter) TranscriptionComplete(TranscriptionSummary) {}
func (NullReporter) SEOComplete(SEOSummary)                     {}
func (NullReporter) AnalysisComplete(AnalysisSummary)           {}
func (NullReporter) OrganizeComplete(OrganizeSummary)           {}
func (NullReporter) ComposeComplete(ComposeSummary)             {}
func (NullReporter) Table(TableData)                            {}
func (NullReporter) Warning(string)                             {}
func (NullReporter) Error(ReporterError)                        {}
func (NullReporter) OperationComplete(string)                   {}
func (NullReporter) BatchStarted(BatchStartInfo)                {}
func (NullReporter) FileProgress(FileProgressContext)           {}
func (NullReporter) BatchComplete(BatchSummary)                 {}
func (NullReporter) Verbose(string)                             {}
