package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil reporters are skipped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	c := &CompositeReporter{}
	for _, r := range reporters {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
	return c
}

func (c *CompositeReporter) Initialization(summary InitializationSummary) {
	for _, r := range c.reporters {
		r.Initialization(summary)
	}
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(update)
	}
}

func (c *CompositeReporter) ProgressStarted(stage string) {
	for _, r := range c.reporters {
		r.ProgressStarted(stage)
	}
}

func (c *CompositeReporter) Progress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.Progress(progress)
	}
}

func (c *CompositeReporter) ProgressFinished() {
	for _, r := range c.reporters {
		r.ProgressFinished()
	}
}

func (c *CompositeReporter) MetadataComplete(summary MetadataSummary) {
	for _, r := range c.reporters {
		r.MetadataComplete(summary)
	}
}

func (c *CompositeReporter) SilenceComplete(summary SilenceSummary) {
	for _, r := range c.reporters {
		r.SilenceComplete(summary)
	}
}

func (c *CompositeReporter) SilenceRanges(summary SilenceRangesSummary) {
	for _, r := range c.reporters {
		r.SilenceRanges(summary)
	}
}

func (c *CompositeReporter) TranscriptionComplete(summary TranscriptionSummary) {
	for _, r := range c.reporters {
		r.TranscriptionComplete(summary)
	}
}

func (c *CompositeReporter) SEOComplete(summary SEOSummary) {
	for _, r := range c.reporters {
		r.SEOComplete(summary)
	}
}

func (c *CompositeReporter) AnalysisComplete(summary AnalysisSummary) {
	for _, r := range c.reporters {
		r.AnalysisComplete(summary)
	}
}

func (c *CompositeReporter) OrganizeComplete(summary OrganizeSummary) {
	for _, r := range c.reporters {
		r.OrganizeComplete(summary)
	}
}

func (c *CompositeReporter) ComposeComplete(summary ComposeSummary) {
	for _, r := range c.reporters {
		r.ComposeComplete(summary)
	}
}

func (c *CompositeReporter) Table(data TableData) {
	for _, r := range c.reporters {
		r.Table(data)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	for _, r := range c.reporters {
		r.BatchStarted(info)
	}
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	for _, r := range c.reporters {
		r.FileProgress(context)
	}
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	for _, r := range c.reporters {
		r.BatchComplete(summary)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
