// Package discovery finds media files for batch processing.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []string
	SkippedCount int
	// Superseded lists non-mp3 files dropped because an mp3 with the same
	// stem sits beside them.
	Superseded []string
}

// FindMediaFiles returns the audio and video files directly inside dir,
// sorted case-insensitively by name. Hidden files and subdirectories are
// ignored. When a file and its converted mp3 both exist, only the mp3 is
// kept so reruns do not convert twice.
func FindMediaFiles(dir string) (*DiscoveryResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewPathError("directory does not exist: " + dir)
	}
	if !info.IsDir() {
		return nil, errors.NewPathError(dir + " is not a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIOError("cannot read directory "+dir, err)
	}

	result := &DiscoveryResult{}
	mp3Stems := make(map[string]bool)
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if !util.IsMediaPath(fullPath) {
			result.SkippedCount++
			continue
		}
		if util.Ext(name) == ".mp3" {
			mp3Stems[strings.ToLower(util.GetFileStem(name))] = true
		}
		candidates = append(candidates, fullPath)
	}

	for _, path := range candidates {
		if util.Ext(path) != ".mp3" && mp3Stems[strings.ToLower(util.GetFileStem(path))] {
			result.Superseded = append(result.Superseded, path)
			continue
		}
		result.Files = append(result.Files, path)
	}

	if len(result.Files) == 0 {
		return nil, errors.NewNoFilesFoundError(dir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})

	logDiscoveredFiles(result)
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *DiscoveryResult) {
	files := result.Files
	logging.Info("found media files", "count", len(files), "skipped", result.SkippedCount, "superseded", len(result.Superseded))

	maxToLog := min(5, len(files))
	for i := range maxToLog {
		logging.Debug("discovered", "file", filepath.Base(files[i]))
	}
	if len(files) > 5 {
		logging.Debug("discovered more", "remaining", len(files)-5)
	}
}
