package preflight

import (
	"path/filepath"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/deps"
)

// MinFreeBytes is the free space below which the disk check fails. Silence
// removal keeps a decoded WAV of the input next to the output.
const MinFreeBytes uint64 = 2 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the given config. workDir is where media
// will be written.
func RunAll(cfg *config.Config, workDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.CheckBinaries(deps.Requirements()) {
		results = append(results, FromStatus(status))
	}

	results = append(results, CheckAPIKey(cfg.LLM))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.Paths.HistoryDB)))
	}
	if workDir != "" {
		results = append(results, CheckDiskSpace("Free disk space", workDir, MinFreeBytes))
	}
	return results
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
